package typeid

import (
	"strings"
	"testing"
)

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"user", NewUserID, PrefixUser},
		{"document", NewDocumentID, PrefixDocument},
		{"snapshot", NewSnapshotID, PrefixSnapshot},
		{"object", NewObjectID, PrefixObject},
		{"asset", NewAssetID, PrefixAsset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if !strings.HasPrefix(id, tt.prefix+"_") {
				t.Errorf("id %q does not carry prefix %q", id, tt.prefix)
			}
			if err := Validate(id, tt.prefix); err != nil {
				t.Errorf("Validate(%q, %q): %v", id, tt.prefix, err)
			}
			if err := Validate(id, "other"); err == nil {
				t.Errorf("Validate(%q, other) accepted wrong prefix", id)
			}
		})
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	if err := Validate("not a typeid", PrefixUser); err == nil {
		t.Fatal("expected error for malformed id")
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewObjectID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
