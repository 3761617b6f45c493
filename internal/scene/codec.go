package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is an opaque, immutable serialization of the full collection at
// one instant. It carries kinds, geometry, style and role tags — enough to
// reconstruct the scene and re-derive all bindings — but no cross-object
// references, so it stays independent of in-memory identity.
type Snapshot []byte

// Serialize encodes the collection to a snapshot in painter's order.
func (c *Collection) Serialize() (Snapshot, error) {
	data, err := json.Marshal(c.Objects())
	if err != nil {
		return nil, fmt.Errorf("serialize collection: %w", err)
	}
	return Snapshot(data), nil
}

// DecodeSnapshot parses a snapshot into fresh object instances.
func DecodeSnapshot(snap Snapshot) ([]*Object, error) {
	var objs []*Object
	if err := json.Unmarshal(snap, &objs); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	for _, obj := range objs {
		if obj == nil || obj.ID == "" {
			return nil, fmt.Errorf("decode snapshot: record missing id")
		}
	}
	return objs, nil
}

// Equal reports whether two snapshots are byte-identical.
func (s Snapshot) Equal(other Snapshot) bool {
	return bytes.Equal(s, other)
}
