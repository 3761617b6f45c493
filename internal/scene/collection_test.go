package scene

import (
	"testing"
)

func rectObj(id string, x, y, w, h float64) *Object {
	return &Object{
		ID: id, Kind: KindRect,
		X: x, Y: y, Width: w, Height: h,
		ScaleX: 1, ScaleY: 1,
		Selectable: true,
	}
}

func TestCollectionAdd(t *testing.T) {
	c := NewCollection()

	if err := c.Add(rectObj("a", 0, 0, 10, 10)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := c.Add(rectObj("a", 0, 0, 10, 10)); err == nil {
		t.Fatal("expected error adding duplicate id")
	}
	if err := c.Add(&Object{}); err == nil {
		t.Fatal("expected error adding object without id")
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestCollectionRemove(t *testing.T) {
	c := NewCollection()
	c.Add(rectObj("a", 0, 0, 10, 10))

	if removed := c.Remove("a"); removed == nil || removed.ID != "a" {
		t.Fatalf("Remove returned %+v, want object a", removed)
	}
	if removed := c.Remove("a"); removed != nil {
		t.Fatalf("second Remove returned %+v, want nil", removed)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d, want 0", c.Len())
	}
}

func TestTopmostAt(t *testing.T) {
	c := NewCollection()
	c.Add(rectObj("back", 0, 0, 100, 100))
	c.Add(rectObj("front", 50, 50, 100, 100))

	t.Run("front object wins in the overlap", func(t *testing.T) {
		hit := c.TopmostAt(Point{X: 75, Y: 75})
		if hit == nil || hit.ID != "front" {
			t.Fatalf("TopmostAt = %v, want front", hit)
		}
	})

	t.Run("only the back object covers the corner", func(t *testing.T) {
		hit := c.TopmostAt(Point{X: 10, Y: 10})
		if hit == nil || hit.ID != "back" {
			t.Fatalf("TopmostAt = %v, want back", hit)
		}
	})

	t.Run("miss returns nil", func(t *testing.T) {
		if hit := c.TopmostAt(Point{X: 500, Y: 500}); hit != nil {
			t.Fatalf("TopmostAt = %v, want nil", hit)
		}
	})

	t.Run("non-selectable object falls through", func(t *testing.T) {
		text := rectObj("label", 60, 60, 40, 20)
		text.Kind = KindTextbox
		text.Selectable = false
		c.Add(text)

		hit := c.TopmostAt(Point{X: 75, Y: 75})
		if hit == nil || hit.ID != "front" {
			t.Fatalf("TopmostAt = %v, want front (label not selectable)", hit)
		}
	})
}

func TestCollectionReplace(t *testing.T) {
	c := NewCollection()
	c.Add(rectObj("old", 0, 0, 10, 10))

	objs := []*Object{rectObj("a", 0, 0, 1, 1), rectObj("b", 0, 0, 1, 1)}
	if err := c.Replace(objs); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get("old"); ok {
		t.Fatal("old object survived Replace")
	}

	got := c.Objects()
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("order after Replace = [%s %s], want [a b]", got[0].ID, got[1].ID)
	}

	if err := c.Replace([]*Object{rectObj("x", 0, 0, 1, 1), rectObj("x", 0, 0, 1, 1)}); err == nil {
		t.Fatal("expected error replacing with duplicate ids")
	}
}
