// Package binding maintains bound pairs: a container object and a dependent
// text object whose transform and lifecycle are slaved to the container.
//
// The in-memory link is a derived cache, never a persisted fact. Snapshots
// carry only role tags, and Relink rebuilds every pair from those tags plus
// geometric proximity after each restore.
package binding

import (
	"log/slog"
	"math"

	"github.com/wower3/image-edit/internal/scene"
)

// Binder owns all bound pairs of a single scene collection.
type Binder struct {
	textByContainer map[string]string
	containerByText map[string]string
}

// NewBinder creates an empty binder.
func NewBinder() *Binder {
	return &Binder{
		textByContainer: make(map[string]string),
		containerByText: make(map[string]string),
	}
}

// Bind establishes a pair between container and text and tags both members.
// A container has at most one bound text and a text exactly one container;
// binding an already-bound side is a logged no-op, since it is reachable
// through rapid UI interaction and must not interrupt the user.
func (b *Binder) Bind(container, text *scene.Object) {
	if _, ok := b.textByContainer[container.ID]; ok {
		slog.Warn("container already bound", "container", container.ID)
		return
	}
	if _, ok := b.containerByText[text.ID]; ok {
		slog.Warn("text already bound", "text", text.ID)
		return
	}

	container.ContainerRole = scene.ContainerBound
	text.TextRole = scene.TextBound
	text.Selectable = false

	b.textByContainer[container.ID] = text.ID
	b.containerByText[text.ID] = container.ID

	b.SyncTextToContainer(container, text)
}

// TextFor returns the bound text ID for a container.
func (b *Binder) TextFor(containerID string) (string, bool) {
	id, ok := b.textByContainer[containerID]
	return id, ok
}

// ContainerFor returns the container ID for a bound text.
func (b *Binder) ContainerFor(textID string) (string, bool) {
	id, ok := b.containerByText[textID]
	return id, ok
}

// PairCount returns the number of bound pairs.
func (b *Binder) PairCount() int {
	return len(b.textByContainer)
}

// SyncTextToContainer recomputes the text's transform from the container's:
// center on the container's geometric center (bubbles: raised by half the
// tail height so the text sits above the tail), copy scale and rotation.
// Deterministic and idempotent; run after every container transform change.
func (b *Binder) SyncTextToContainer(container, text *scene.Object) {
	center := container.Center()
	if container.Kind == scene.KindBubblePath {
		center.Y -= container.TailSize * container.ScaleY / 2
	}

	text.ScaleX = container.ScaleX
	text.ScaleY = container.ScaleY
	text.Rotation = container.Rotation
	text.SetCenter(center)
}

// Sync looks up the pair for the given container in col and syncs its text.
// Unknown or unbound IDs are ignored.
func (b *Binder) Sync(col *scene.Collection, containerID string) {
	textID, ok := b.textByContainer[containerID]
	if !ok {
		return
	}
	container, ok1 := col.Get(containerID)
	text, ok2 := col.Get(textID)
	if !ok1 || !ok2 {
		return
	}
	b.SyncTextToContainer(container, text)
}

// CascadeRemove removes the object and, if it is half of a bound pair, its
// partner, from both the collection and the binder. Returns the IDs actually
// removed. No half-pair survives this call.
func (b *Binder) CascadeRemove(col *scene.Collection, id string) []string {
	var removed []string

	partnerID := ""
	if textID, ok := b.textByContainer[id]; ok {
		partnerID = textID
	} else if containerID, ok := b.containerByText[id]; ok {
		partnerID = containerID
	}

	if col.Remove(id) != nil {
		removed = append(removed, id)
	}
	if partnerID != "" {
		if col.Remove(partnerID) != nil {
			removed = append(removed, partnerID)
		}
	}

	b.forget(id)
	b.forget(partnerID)

	return removed
}

func (b *Binder) forget(id string) {
	if id == "" {
		return
	}
	if textID, ok := b.textByContainer[id]; ok {
		delete(b.textByContainer, id)
		delete(b.containerByText, textID)
	}
	if containerID, ok := b.containerByText[id]; ok {
		delete(b.containerByText, id)
		delete(b.textByContainer, containerID)
	}
}

// Relink rebuilds all pairs from role tags after a full-collection replace.
// Restored objects carry tags but no relationship references, so each
// container claims the unclaimed bound-text nearest to its center. Unmatched
// containers or texts stay unbound. Distance ties go to the
// first-encountered text; that is accepted nondeterminism for pathological
// layouts, not something to correct here.
func (b *Binder) Relink(objects []*scene.Object) {
	b.textByContainer = make(map[string]string)
	b.containerByText = make(map[string]string)

	var containers, texts []*scene.Object
	for _, obj := range objects {
		switch {
		case obj.IsBoundContainer():
			containers = append(containers, obj)
		case obj.IsBoundText():
			texts = append(texts, obj)
		}
	}

	claimed := make(map[string]bool, len(texts))
	for _, container := range containers {
		var best *scene.Object
		bestDist := math.Inf(1)
		center := container.Center()
		for _, text := range texts {
			if claimed[text.ID] {
				continue
			}
			if d := center.DistanceTo(text.Center()); d < bestDist {
				bestDist = d
				best = text
			}
		}
		if best == nil {
			continue
		}

		claimed[best.ID] = true
		best.Selectable = false
		b.textByContainer[container.ID] = best.ID
		b.containerByText[best.ID] = container.ID
		b.SyncTextToContainer(container, best)
	}
}
