package scene

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("object not found")

// Collection is the authoritative set of objects on the canvas, kept in
// painter's order (index 0 is the back). It is the serialization unit for
// history snapshots.
type Collection struct {
	order []string
	byID  map[string]*Object
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{byID: make(map[string]*Object)}
}

// Add inserts an object at the front of the z-order.
func (c *Collection) Add(obj *Object) error {
	if obj.ID == "" {
		return errors.New("object has no id")
	}
	if _, ok := c.byID[obj.ID]; ok {
		return fmt.Errorf("duplicate object id %q", obj.ID)
	}
	c.byID[obj.ID] = obj
	c.order = append(c.order, obj.ID)
	return nil
}

// Remove deletes an object by ID and returns it, or nil if absent.
func (c *Collection) Remove(id string) *Object {
	obj, ok := c.byID[id]
	if !ok {
		return nil
	}
	delete(c.byID, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return obj
}

// Get returns an object by ID.
func (c *Collection) Get(id string) (*Object, bool) {
	obj, ok := c.byID[id]
	return obj, ok
}

// Len returns the number of objects.
func (c *Collection) Len() int {
	return len(c.order)
}

// Objects returns all objects in painter's order (back to front).
func (c *Collection) Objects() []*Object {
	objs := make([]*Object, 0, len(c.order))
	for _, id := range c.order {
		objs = append(objs, c.byID[id])
	}
	return objs
}

// TopmostAt returns the frontmost selectable object whose bounds contain
// the point, or nil. Bound texts are not independently selectable, so a
// hit inside one falls through to its container underneath.
func (c *Collection) TopmostAt(p Point) *Object {
	for i := len(c.order) - 1; i >= 0; i-- {
		obj := c.byID[c.order[i]]
		if !obj.Selectable {
			continue
		}
		if obj.Bounds().Contains(p.X, p.Y) {
			return obj
		}
	}
	return nil
}

// Replace swaps the entire contents for objs, preserving their order.
// Used by snapshot restore; the previous objects are discarded.
func (c *Collection) Replace(objs []*Object) error {
	byID := make(map[string]*Object, len(objs))
	order := make([]string, 0, len(objs))
	for _, obj := range objs {
		if obj.ID == "" {
			return errors.New("object has no id")
		}
		if _, ok := byID[obj.ID]; ok {
			return fmt.Errorf("duplicate object id %q", obj.ID)
		}
		byID[obj.ID] = obj
		order = append(order, obj.ID)
	}
	c.byID = byID
	c.order = order
	return nil
}
