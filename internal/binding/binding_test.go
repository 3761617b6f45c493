package binding

import (
	"testing"

	"github.com/wower3/image-edit/internal/scene"
)

func container(id string, x, y, w, h float64) *scene.Object {
	return &scene.Object{
		ID: id, Kind: scene.KindRect,
		X: x, Y: y, Width: w, Height: h,
		ScaleX: 1, ScaleY: 1,
		Selectable: true,
	}
}

func textbox(id string, x, y float64) *scene.Object {
	return &scene.Object{
		ID: id, Kind: scene.KindTextbox,
		X: x, Y: y, Width: 100, Height: 48,
		ScaleX: 1, ScaleY: 1,
	}
}

func TestBind(t *testing.T) {
	b := NewBinder()
	box := container("box", 0, 0, 100, 80)
	label := textbox("label", 500, 500)

	b.Bind(box, label)

	if !box.IsBoundContainer() {
		t.Error("container not tagged after Bind")
	}
	if !label.IsBoundText() {
		t.Error("text not tagged after Bind")
	}
	if label.Selectable {
		t.Error("bound text stayed selectable")
	}
	if got := label.Center(); got != box.Center() {
		t.Errorf("text center = %+v, want container center %+v", got, box.Center())
	}

	id, ok := b.TextFor("box")
	if !ok || id != "label" {
		t.Errorf("TextFor = %q, %v", id, ok)
	}
	id, ok = b.ContainerFor("label")
	if !ok || id != "box" {
		t.Errorf("ContainerFor = %q, %v", id, ok)
	}
}

func TestBindAlreadyBoundIsNoOp(t *testing.T) {
	b := NewBinder()
	box := container("box", 0, 0, 100, 80)
	label := textbox("label", 0, 0)
	b.Bind(box, label)

	// Re-binding either side must not disturb the existing pair; this path
	// is reachable through rapid UI interaction.
	other := textbox("other", 0, 0)
	b.Bind(box, other)
	if other.IsBoundText() {
		t.Error("second text got tagged by rejected Bind")
	}

	otherBox := container("otherBox", 0, 0, 50, 50)
	b.Bind(otherBox, label)
	if otherBox.IsBoundContainer() {
		t.Error("second container got tagged by rejected Bind")
	}

	if got, _ := b.TextFor("box"); got != "label" {
		t.Errorf("pair changed: TextFor(box) = %q, want label", got)
	}
	if b.PairCount() != 1 {
		t.Errorf("PairCount = %d, want 1", b.PairCount())
	}
}

func TestSyncTextToContainer(t *testing.T) {
	b := NewBinder()

	t.Run("copies center scale and rotation", func(t *testing.T) {
		box := container("box", 100, 100, 200, 100)
		box.ScaleX = 2
		box.ScaleY = 1.5
		box.Rotation = 45
		label := textbox("label", 0, 0)

		b.SyncTextToContainer(box, label)

		if label.ScaleX != 2 || label.ScaleY != 1.5 || label.Rotation != 45 {
			t.Errorf("transform not copied: sx=%g sy=%g r=%g", label.ScaleX, label.ScaleY, label.Rotation)
		}
		if got := label.Center(); got != box.Center() {
			t.Errorf("center = %+v, want %+v", got, box.Center())
		}

		// Idempotent: running the sync again moves nothing.
		beforeX, beforeY := label.X, label.Y
		b.SyncTextToContainer(box, label)
		if label.X != beforeX || label.Y != beforeY {
			t.Error("second sync moved the text")
		}
	})

	t.Run("bubble raises text above the tail", func(t *testing.T) {
		bubble := container("bubble", 0, 0, 160, 120)
		bubble.Kind = scene.KindBubblePath
		bubble.TailSize = 24
		label := textbox("label", 0, 0)

		b.SyncTextToContainer(bubble, label)

		want := bubble.Center()
		want.Y -= 12 // half the tail height at scale 1
		if got := label.Center(); got != want {
			t.Errorf("bubble text center = %+v, want %+v", got, want)
		}
	})
}

func TestCascadeRemove(t *testing.T) {
	newScene := func() (*Binder, *scene.Collection) {
		b := NewBinder()
		col := scene.NewCollection()
		box := container("box", 0, 0, 100, 80)
		label := textbox("label", 0, 0)
		col.Add(box)
		col.Add(label)
		b.Bind(box, label)
		return b, col
	}

	t.Run("removing the container removes the text", func(t *testing.T) {
		b, col := newScene()
		removed := b.CascadeRemove(col, "box")
		if len(removed) != 2 {
			t.Fatalf("removed %v, want both pair members", removed)
		}
		if col.Len() != 0 {
			t.Errorf("collection still has %d objects", col.Len())
		}
		if b.PairCount() != 0 {
			t.Errorf("binder still tracks %d pairs", b.PairCount())
		}
	})

	t.Run("removing the text removes the container", func(t *testing.T) {
		b, col := newScene()
		removed := b.CascadeRemove(col, "label")
		if len(removed) != 2 {
			t.Fatalf("removed %v, want both pair members", removed)
		}
		if col.Len() != 0 {
			t.Errorf("collection still has %d objects", col.Len())
		}
	})

	t.Run("unbound object removes only itself", func(t *testing.T) {
		b, col := newScene()
		lone := container("lone", 500, 500, 10, 10)
		col.Add(lone)
		removed := b.CascadeRemove(col, "lone")
		if len(removed) != 1 || removed[0] != "lone" {
			t.Fatalf("removed %v, want [lone]", removed)
		}
		if col.Len() != 2 {
			t.Errorf("pair was disturbed: %d objects left, want 2", col.Len())
		}
	})
}

func TestRelink(t *testing.T) {
	t.Run("each container claims its nearest text", func(t *testing.T) {
		boxA := container("boxA", 0, 0, 100, 80)
		boxA.ContainerRole = scene.ContainerBound
		boxB := container("boxB", 1000, 0, 100, 80)
		boxB.ContainerRole = scene.ContainerBound

		textA := textbox("textA", 0, 16) // near boxA's center
		textA.TextRole = scene.TextBound
		textB := textbox("textB", 1000, 16) // near boxB's center
		textB.TextRole = scene.TextBound

		b := NewBinder()
		b.Relink([]*scene.Object{boxA, boxB, textA, textB})

		if got, _ := b.TextFor("boxA"); got != "textA" {
			t.Errorf("boxA claimed %q, want textA", got)
		}
		if got, _ := b.TextFor("boxB"); got != "textB" {
			t.Errorf("boxB claimed %q, want textB", got)
		}
		if textA.Selectable || textB.Selectable {
			t.Error("relinked texts stayed selectable")
		}
	})

	t.Run("claimed texts are not claimed twice", func(t *testing.T) {
		boxA := container("boxA", 0, 0, 100, 80)
		boxA.ContainerRole = scene.ContainerBound
		boxB := container("boxB", 10, 0, 100, 80)
		boxB.ContainerRole = scene.ContainerBound

		text := textbox("text", 0, 16)
		text.TextRole = scene.TextBound

		b := NewBinder()
		b.Relink([]*scene.Object{boxA, boxB, text})

		_, aOK := b.TextFor("boxA")
		_, bOK := b.TextFor("boxB")
		if aOK == bOK {
			t.Fatalf("exactly one container must claim the text: boxA=%v boxB=%v", aOK, bOK)
		}
		if b.PairCount() != 1 {
			t.Errorf("PairCount = %d, want 1", b.PairCount())
		}
	})

	t.Run("untagged objects are ignored", func(t *testing.T) {
		plain := container("plain", 0, 0, 100, 80)
		freeText := textbox("free", 10, 10)

		b := NewBinder()
		b.Relink([]*scene.Object{plain, freeText})
		if b.PairCount() != 0 {
			t.Errorf("PairCount = %d, want 0", b.PairCount())
		}
	})

	t.Run("relink replaces stale pairs", func(t *testing.T) {
		b := NewBinder()
		oldBox := container("oldBox", 0, 0, 100, 80)
		oldText := textbox("oldText", 0, 0)
		b.Bind(oldBox, oldText)

		b.Relink(nil)
		if b.PairCount() != 0 {
			t.Errorf("stale pair survived Relink: %d", b.PairCount())
		}
	})
}
