// Package store persists users, documents and document snapshots in Postgres.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens a pgx connection pool and verifies connectivity.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Store wraps the pool with typed queries.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password, display_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, password, display_name, created_at`,
		u.ID, u.Email, u.Password, u.DisplayName,
	)
	var out User
	if err := row.Scan(&out.ID, &out.Email, &out.Password, &out.DisplayName, &out.CreatedAt); err != nil {
		return User{}, err
	}
	return out, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`,
		email,
	)
	var out User
	if err := row.Scan(&out.ID, &out.Email, &out.Password, &out.DisplayName, &out.CreatedAt); err != nil {
		return User{}, err
	}
	return out, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`,
		id,
	)
	var out User
	if err := row.Scan(&out.ID, &out.Email, &out.Password, &out.DisplayName, &out.CreatedAt); err != nil {
		return User{}, err
	}
	return out, nil
}

type Document struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Store) CreateDocument(ctx context.Context, d Document) (Document, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO documents (id, name, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, owner_id, created_at, updated_at`,
		d.ID, d.Name, d.OwnerID,
	)
	var out Document
	if err := row.Scan(&out.ID, &out.Name, &out.OwnerID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return Document{}, err
	}
	return out, nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (Document, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at, updated_at FROM documents WHERE id = $1`,
		id,
	)
	var out Document
	if err := row.Scan(&out.ID, &out.Name, &out.OwnerID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return Document{}, err
	}
	return out, nil
}

func (s *Store) ListDocumentsForUser(ctx context.Context, ownerID string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, owner_id, created_at, updated_at
		 FROM documents WHERE owner_id = $1 ORDER BY updated_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Name, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) RenameDocument(ctx context.Context, id, name string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE documents SET name = $2, updated_at = now() WHERE id = $1`,
		id, name,
	)
	return err
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}

type Snapshot struct {
	ID         string
	DocumentID string
	Version    int32
	Payload    []byte
	CreatedAt  time.Time
}

func (s *Store) CreateSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO document_snapshots (id, document_id, version, payload)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, document_id, version, payload, created_at`,
		snap.ID, snap.DocumentID, snap.Version, snap.Payload,
	)
	var out Snapshot
	if err := row.Scan(&out.ID, &out.DocumentID, &out.Version, &out.Payload, &out.CreatedAt); err != nil {
		return Snapshot{}, err
	}
	return out, nil
}

func (s *Store) GetLatestSnapshot(ctx context.Context, documentID string) (Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, document_id, version, payload, created_at
		 FROM document_snapshots
		 WHERE document_id = $1 ORDER BY version DESC LIMIT 1`,
		documentID,
	)
	var out Snapshot
	if err := row.Scan(&out.ID, &out.DocumentID, &out.Version, &out.Payload, &out.CreatedAt); err != nil {
		return Snapshot{}, err
	}
	return out, nil
}
