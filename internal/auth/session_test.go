package auth

import (
	"errors"
	"testing"
)

func TestSessionCreateResolveRemove(t *testing.T) {
	reg := NewSessionRegistry()

	id := reg.Create(SessionRef{Role: RoleUser, SubjectID: "user-1"})
	if id == "" {
		t.Fatal("empty session id")
	}

	ref, err := reg.Resolve(id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.SubjectID != "user-1" || ref.Role != RoleUser {
		t.Fatalf("unexpected ref: %+v", ref)
	}

	if err := reg.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := reg.Resolve(id); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after removal, got %v", err)
	}
	if err := reg.Remove(id); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for repeat removal, got %v", err)
	}
}

func TestSessionUnknownIDFails(t *testing.T) {
	reg := NewSessionRegistry()
	for _, id := range []string{"", "unknown", "123456"} {
		if _, err := reg.Resolve(id); !errors.Is(err, ErrInvalidSession) {
			t.Fatalf("Resolve(%q): expected ErrInvalidSession, got %v", id, err)
		}
	}
}

func TestSessionIDsAreUnpredictable(t *testing.T) {
	reg := NewSessionRegistry()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := reg.Create(SessionRef{Role: RoleUser, SubjectID: "user-1"})
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session id %q", id)
		}
		if len(id) < 32 {
			t.Fatalf("session id too short for a wide random space: %q", id)
		}
		seen[id] = struct{}{}
	}
}
