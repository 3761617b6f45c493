// Package document manages stored scene documents: creation, listing, and
// the versioned snapshot payloads the collaboration hub loads and saves.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wower3/image-edit/internal/scene"
	"github.com/wower3/image-edit/internal/store"
	"github.com/wower3/image-edit/internal/typeid"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrForbidden = errors.New("forbidden")
)

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

type Document struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (s *Service) Create(ctx context.Context, name, ownerID string) (*Document, error) {
	doc, err := s.store.CreateDocument(ctx, store.Document{
		ID:      typeid.NewDocumentID(),
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	// Seed the empty-scene snapshot: the history floor every session
	// starts from.
	empty, err := json.Marshal([]*scene.Object{})
	if err != nil {
		return nil, fmt.Errorf("marshal empty scene: %w", err)
	}
	_, err = s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:         typeid.NewSnapshotID(),
		DocumentID: doc.ID,
		Version:    1,
		Payload:    empty,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toDocument(doc), nil
}

func (s *Service) Get(ctx context.Context, documentID, userID string) (*Document, error) {
	doc, err := s.getOwned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}
	return toDocument(doc), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	docs, err := s.store.ListDocumentsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = *toDocument(d)
	}
	return out, nil
}

func (s *Service) Rename(ctx context.Context, documentID, userID, name string) error {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return err
	}
	return s.store.RenameDocument(ctx, documentID, name)
}

func (s *Service) Delete(ctx context.Context, documentID, userID string) error {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return err
	}
	return s.store.DeleteDocument(ctx, documentID)
}

// GetLatestSnapshot returns the most recent stored scene payload.
func (s *Service) GetLatestSnapshot(ctx context.Context, documentID, userID string) (json.RawMessage, error) {
	if _, err := s.getOwned(ctx, documentID, userID); err != nil {
		return nil, err
	}

	snap, err := s.store.GetLatestSnapshot(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Payload, nil
}

// SaveSnapshot appends a new snapshot version for the document.
func (s *Service) SaveSnapshot(ctx context.Context, documentID string, payload []byte) error {
	nextVersion := int32(1)
	if current, err := s.store.GetLatestSnapshot(ctx, documentID); err == nil {
		nextVersion = current.Version + 1
	}

	_, err := s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:         typeid.NewSnapshotID(),
		DocumentID: documentID,
		Version:    nextVersion,
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the latest payload without an ownership check; used
// by the collaboration hub, which authenticates clients itself.
func (s *Service) LoadSnapshot(ctx context.Context, documentID string) ([]byte, error) {
	snap, err := s.store.GetLatestSnapshot(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Payload, nil
}

// IsOwner reports whether userID owns the document.
func (s *Service) IsOwner(ctx context.Context, documentID, userID string) (bool, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("get document: %w", err)
	}
	return doc.OwnerID == userID, nil
}

func (s *Service) getOwned(ctx context.Context, documentID, userID string) (store.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Document{}, ErrNotFound
		}
		return store.Document{}, fmt.Errorf("get document: %w", err)
	}
	if doc.OwnerID != userID {
		return store.Document{}, ErrForbidden
	}
	return doc, nil
}

func toDocument(d store.Document) *Document {
	return &Document{
		ID:        d.ID,
		Name:      d.Name,
		OwnerID:   d.OwnerID,
		CreatedAt: d.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: d.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
