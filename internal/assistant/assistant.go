// Package assistant resolves the configuration a call session runs under:
// system prompt, greeting, voice selector, and optional knowledge collection.
// The orchestrator only sees fully-resolved Assistant values through the
// Store contract, never the backing persistence.
package assistant

import (
	"context"
	"errors"
)

// Assistant is the resolved configuration for one call session.
type Assistant struct {
	ID           string
	Name         string
	SystemPrompt string
	Greeting     string
	Voice        string
	Collection   string
}

// ErrNotFound is returned when no assistant exists for a lookup key.
var ErrNotFound = errors.New("assistant not found")

// Store resolves assistant configurations by lookup key.
type Store interface {
	Resolve(ctx context.Context, id string) (Assistant, error)
	List(ctx context.Context) ([]Assistant, error)
}

// StaticStore serves a single fixed assistant, used when no database is
// configured and for the bridge transport's fixed lookup.
type StaticStore struct {
	assistant Assistant
}

func NewStaticStore(a Assistant) *StaticStore {
	return &StaticStore{assistant: a}
}

// Resolve returns the configured assistant for any key; the requested id is
// preserved so sessions stay attributable.
func (s *StaticStore) Resolve(_ context.Context, id string) (Assistant, error) {
	a := s.assistant
	if id != "" {
		a.ID = id
	}
	return a, nil
}

// List returns the single configured assistant.
func (s *StaticStore) List(_ context.Context) ([]Assistant, error) {
	return []Assistant{s.assistant}, nil
}
