// Package history provides linear undo/redo over full-scene snapshots with
// duplicate collapsing and debounced batching of rapid commit requests.
package history

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wower3/image-edit/internal/scene"
)

// Target is the document the manager snapshots and restores. Restore must
// replace the entire object collection, re-derive bindings and re-attach
// per-object behavior; a failed Restore must leave the target unchanged.
type Target interface {
	Serialize() (scene.Snapshot, error)
	Restore(scene.Snapshot) error
}

const (
	DefaultLimit    = 50
	DefaultDebounce = 300 * time.Millisecond
)

// Manager owns the undo and redo stacks for one editing session.
//
// The manager is not internally synchronized: callers hold lock around every
// method call, and the debounce timer takes the same lock before firing.
// This mirrors the single-threaded cooperative model of the editor — the only
// invariant to protect is "never commit or restore while another restore or
// commit is in flight", which the restoring/committing flags enforce.
type Manager struct {
	target Target
	lock   sync.Locker

	undoStack []scene.Snapshot
	redoStack []scene.Snapshot

	limit    int
	debounce time.Duration

	restoring  bool
	committing bool

	// pendingGen invalidates a debounce timer that fires after it was
	// cancelled but before it could take the lock.
	timer      *time.Timer
	pendingGen uint64
}

// NewManager creates a manager over target. lock is the session lock shared
// with the caller. A limit or debounce of zero selects the default.
func NewManager(target Target, lock sync.Locker, limit int, debounce time.Duration) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Manager{
		target:   target,
		lock:     lock,
		limit:    limit,
		debounce: debounce,
	}
}

// Init records the current target state as the floor entry. The floor is the
// initial document state; undo never pops past it and eviction never drops it.
func (m *Manager) Init() error {
	snap, err := m.target.Serialize()
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	m.undoStack = []scene.Snapshot{snap}
	m.redoStack = nil
	return nil
}

// RequestCommit schedules a commit after the debounce quiet period. Calling
// again before the timer fires restarts it, collapsing a burst of
// drag-driven updates into a single history entry. No-op mid-restore or
// mid-commit.
func (m *Manager) RequestCommit() {
	if m.restoring || m.committing {
		return
	}

	m.pendingGen++
	gen := m.pendingGen
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, func() {
		m.lock.Lock()
		defer m.lock.Unlock()
		if m.pendingGen != gen {
			return // cancelled or superseded while we waited for the lock
		}
		m.timer = nil
		if err := m.commit(); err != nil {
			slog.Error("debounced commit failed", "error", err)
		}
	})
}

// CommitNow bypasses the debounce for operations that must be individually
// undoable even when rapid. No-op mid-restore or mid-commit.
func (m *Manager) CommitNow() error {
	if m.restoring || m.committing {
		return nil
	}
	m.CancelPending()
	return m.commit()
}

// CancelPending discards any scheduled debounced commit.
func (m *Manager) CancelPending() {
	m.pendingGen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// commit serializes the target and pushes the snapshot. Identical snapshots
// collapse into the existing top entry; any real commit clears the redo
// stack and evicts the oldest undoable entry once over capacity.
func (m *Manager) commit() error {
	m.committing = true
	defer func() { m.committing = false }()

	snap, err := m.target.Serialize()
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if n := len(m.undoStack); n > 0 && m.undoStack[n-1].Equal(snap) {
		return nil
	}

	m.undoStack = append(m.undoStack, snap)
	m.redoStack = nil

	// The floor entry at index 0 is never evicted while the document lives.
	if len(m.undoStack) > m.limit {
		m.undoStack = append(m.undoStack[:1], m.undoStack[2:]...)
	}
	return nil
}

// Undo restores the previous snapshot. At the stack floor or mid-restore it
// is a silent no-op; these states are reachable through rapid interaction
// and must not surface as errors.
func (m *Manager) Undo() error {
	if m.restoring || len(m.undoStack) <= 1 {
		return nil
	}
	m.CancelPending()

	top := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]

	if err := m.restore(m.undoStack[len(m.undoStack)-1]); err != nil {
		m.undoStack = append(m.undoStack, top) // failed restore leaves history as it was
		return err
	}
	m.redoStack = append(m.redoStack, top)
	return nil
}

// Redo re-applies the most recently undone snapshot. No-op when the redo
// stack is empty or mid-restore.
func (m *Manager) Redo() error {
	if m.restoring || len(m.redoStack) == 0 {
		return nil
	}
	m.CancelPending()

	snap := m.redoStack[len(m.redoStack)-1]
	if err := m.restore(snap); err != nil {
		return err
	}
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.undoStack = append(m.undoStack, snap)
	return nil
}

// restore replaces the target's state with snap. Commit requests arriving
// while the restore is in flight are suppressed; the flag is cleared even on
// failure so the session stays usable.
func (m *Manager) restore(snap scene.Snapshot) error {
	m.restoring = true
	defer func() { m.restoring = false }()

	if err := m.target.Restore(snap); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

// Clear empties both stacks and records the current state as the sole entry.
// Used when an entirely new document is loaded.
func (m *Manager) Clear() error {
	m.CancelPending()
	return m.Init()
}

// CanUndo reports whether an undo would change state.
func (m *Manager) CanUndo() bool {
	return len(m.undoStack) > 1
}

// CanRedo reports whether a redo would change state.
func (m *Manager) CanRedo() bool {
	return len(m.redoStack) > 0
}

// Depth returns the sizes of the undo and redo stacks.
func (m *Manager) Depth() (undo, redo int) {
	return len(m.undoStack), len(m.redoStack)
}
