package scene

import "testing"

func TestSnapshotRoundTrip(t *testing.T) {
	c := NewCollection()

	container := rectObj("box", 10, 20, 100, 80)
	container.ContainerRole = ContainerBound

	label := &Object{
		ID: "label", Kind: KindTextbox,
		X: 30, Y: 50, Width: 100, Height: 48,
		ScaleX: 1, ScaleY: 1,
		TextRole:    TextBound,
		Text:        "Add text",
		Placeholder: true,
	}

	c.Add(container)
	c.Add(label)

	snap, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	objs, err := DecodeSnapshot(snap)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("decoded %d objects, want 2", len(objs))
	}

	// Painter's order and role tags survive the round trip; in-memory
	// relationships are not part of the snapshot at all.
	if objs[0].ID != "box" || objs[1].ID != "label" {
		t.Fatalf("order = [%s %s], want [box label]", objs[0].ID, objs[1].ID)
	}
	if !objs[0].IsBoundContainer() {
		t.Error("container role tag lost in round trip")
	}
	if !objs[1].IsBoundText() {
		t.Error("text role tag lost in round trip")
	}
	if !objs[1].Placeholder {
		t.Error("placeholder flag lost in round trip")
	}
}

func TestDecodeSnapshotRejectsMissingID(t *testing.T) {
	if _, err := DecodeSnapshot(Snapshot(`[{"kind":"rect"}]`)); err == nil {
		t.Fatal("expected error for record without id")
	}
	if _, err := DecodeSnapshot(Snapshot(`{not json`)); err == nil {
		t.Fatal("expected error for malformed snapshot")
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := Snapshot(`[{"id":"a"}]`)
	b := Snapshot(`[{"id":"a"}]`)
	c := Snapshot(`[{"id":"b"}]`)

	if !a.Equal(b) {
		t.Error("identical snapshots compare unequal")
	}
	if a.Equal(c) {
		t.Error("different snapshots compare equal")
	}
}
