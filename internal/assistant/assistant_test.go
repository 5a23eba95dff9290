package assistant

import (
	"context"
	"testing"
)

func TestStaticStore_ResolvePreservesRequestedID(t *testing.T) {
	t.Parallel()
	s := NewStaticStore(Assistant{
		ID:           "default",
		SystemPrompt: "be brief",
		Greeting:     "Hello",
	})

	a, err := s.Resolve(context.Background(), "caller-picked")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if a.ID != "caller-picked" {
		t.Fatalf("ID = %q, want caller-picked", a.ID)
	}
	if a.SystemPrompt != "be brief" || a.Greeting != "Hello" {
		t.Fatalf("resolved assistant lost its config: %+v", a)
	}
}

func TestStaticStore_EmptyIDUsesDefault(t *testing.T) {
	t.Parallel()
	s := NewStaticStore(Assistant{ID: "default", Greeting: "Hi"})
	a, err := s.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if a.ID != "default" {
		t.Fatalf("ID = %q, want default", a.ID)
	}
}
