package history

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wower3/image-edit/internal/scene"
)

// fakeTarget is a history target over a plain string state.
type fakeTarget struct {
	state      string
	failSerial bool
	failRestr  bool
}

func (f *fakeTarget) Serialize() (scene.Snapshot, error) {
	if f.failSerial {
		return nil, errors.New("serialize failure")
	}
	return scene.Snapshot(f.state), nil
}

func (f *fakeTarget) Restore(snap scene.Snapshot) error {
	if f.failRestr {
		return errors.New("restore failure")
	}
	f.state = string(snap)
	return nil
}

func newTestManager(t *testing.T, limit int) (*Manager, *fakeTarget) {
	t.Helper()
	target := &fakeTarget{state: "v0"}
	m := NewManager(target, &sync.Mutex{}, limit, time.Hour) // debounce never fires
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m, target
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m, target := newTestManager(t, 0)

	for i := 1; i <= 3; i++ {
		target.state = fmt.Sprintf("v%d", i)
		if err := m.CommitNow(); err != nil {
			t.Fatalf("CommitNow v%d: %v", i, err)
		}
	}

	// Three undos walk back to the floor.
	for i := 2; i >= 0; i-- {
		if err := m.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
		if want := fmt.Sprintf("v%d", i); target.state != want {
			t.Fatalf("state after undo = %q, want %q", target.state, want)
		}
	}

	if m.CanUndo() {
		t.Error("CanUndo true at the floor")
	}

	// Undo at the floor is a silent no-op.
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo at floor: %v", err)
	}
	if target.state != "v0" {
		t.Fatalf("state changed by floor undo: %q", target.state)
	}

	// Redos walk forward again.
	for i := 1; i <= 3; i++ {
		if err := m.Redo(); err != nil {
			t.Fatalf("Redo: %v", err)
		}
		if want := fmt.Sprintf("v%d", i); target.state != want {
			t.Fatalf("state after redo = %q, want %q", target.state, want)
		}
	}
	if m.CanRedo() {
		t.Error("CanRedo true after replaying everything")
	}
}

func TestUndoRedoPairIsIdentity(t *testing.T) {
	m, target := newTestManager(t, 0)

	target.state = "v1"
	m.CommitNow()

	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if err := m.Redo(); err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if target.state != "v1" {
		t.Fatalf("state = %q, want v1", target.state)
	}

	undo, redo := m.Depth()
	if undo != 2 || redo != 0 {
		t.Fatalf("Depth = (%d, %d), want (2, 0)", undo, redo)
	}
}

func TestCommitCollapsesDuplicates(t *testing.T) {
	m, target := newTestManager(t, 0)

	target.state = "v1"
	m.CommitNow()
	m.CommitNow() // unchanged state
	m.CommitNow()

	undo, _ := m.Depth()
	if undo != 2 {
		t.Fatalf("undo depth = %d, want 2 (duplicates collapsed)", undo)
	}
}

func TestCommitClearsRedo(t *testing.T) {
	m, target := newTestManager(t, 0)

	target.state = "v1"
	m.CommitNow()
	m.Undo()
	if !m.CanRedo() {
		t.Fatal("expected redo available after undo")
	}

	target.state = "v2"
	m.CommitNow()
	if m.CanRedo() {
		t.Error("redo stack survived a new commit")
	}
}

func TestEvictionKeepsFloor(t *testing.T) {
	m, target := newTestManager(t, 3)

	for i := 1; i <= 5; i++ {
		target.state = fmt.Sprintf("v%d", i)
		m.CommitNow()
	}

	undo, _ := m.Depth()
	if undo != 3 {
		t.Fatalf("undo depth = %d, want limit 3", undo)
	}

	// Walk all the way back: the floor entry must still be v0, with the
	// oldest intermediate entries evicted from just above it.
	for m.CanUndo() {
		if err := m.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
	}
	if target.state != "v0" {
		t.Fatalf("floor state = %q, want v0", target.state)
	}
}

func TestFailedRestoreLeavesStacksIntact(t *testing.T) {
	m, target := newTestManager(t, 0)

	target.state = "v1"
	m.CommitNow()
	target.state = "v2"
	m.CommitNow()

	undoBefore, redoBefore := m.Depth()

	target.failRestr = true
	if err := m.Undo(); err == nil {
		t.Fatal("expected undo to report the restore failure")
	}

	undo, redo := m.Depth()
	if undo != undoBefore || redo != redoBefore {
		t.Fatalf("Depth after failed undo = (%d, %d), want (%d, %d)", undo, redo, undoBefore, redoBefore)
	}
	if target.state != "v2" {
		t.Fatalf("state after failed undo = %q, want v2", target.state)
	}

	// Once the failure clears, undo works again.
	target.failRestr = false
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo after recovery: %v", err)
	}
	if target.state != "v1" {
		t.Fatalf("state = %q, want v1", target.state)
	}
}

func TestDebounceCollapsesBurst(t *testing.T) {
	target := &fakeTarget{state: "v0"}
	mu := &sync.Mutex{}
	m := NewManager(target, mu, 0, 20*time.Millisecond)
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// A burst of requests inside the quiet period yields one entry for the
	// final state only.
	mu.Lock()
	for i := 1; i <= 5; i++ {
		target.state = fmt.Sprintf("v%d", i)
		m.RequestCommit()
	}
	mu.Unlock()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	undo, _ := m.Depth()
	mu.Unlock()
	if undo != 2 {
		t.Fatalf("undo depth = %d, want 2 (burst collapsed into one entry)", undo)
	}

	mu.Lock()
	err := m.Undo()
	state := target.state
	mu.Unlock()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if state != "v0" {
		t.Fatalf("state = %q, want v0", state)
	}
}

func TestUndoCancelsPendingCommit(t *testing.T) {
	target := &fakeTarget{state: "v0"}
	mu := &sync.Mutex{}
	m := NewManager(target, mu, 0, 20*time.Millisecond)
	if err := m.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	mu.Lock()
	target.state = "v1"
	m.CommitNow()

	target.state = "v2"
	m.RequestCommit()

	// Undo before the debounce fires: the stale commit must not land after
	// the restore.
	if err := m.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	mu.Unlock()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if target.state != "v0" {
		t.Fatalf("state = %q, want v0", target.state)
	}
	undo, redo := m.Depth()
	if undo != 1 || redo != 1 {
		t.Fatalf("Depth = (%d, %d), want (1, 1)", undo, redo)
	}
}

func TestClearResetsToCurrentState(t *testing.T) {
	m, target := newTestManager(t, 0)

	target.state = "v1"
	m.CommitNow()
	m.Undo()

	target.state = "fresh"
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if m.CanUndo() || m.CanRedo() {
		t.Error("history survives Clear")
	}

	undo, redo := m.Depth()
	if undo != 1 || redo != 0 {
		t.Fatalf("Depth = (%d, %d), want (1, 0)", undo, redo)
	}
}
