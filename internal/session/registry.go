package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/voicegate/voicegate/internal/assistant"
	"github.com/voicegate/voicegate/internal/transport"
)

// Registry tracks live sessions by id. IDs are UUIDs, so concurrent session
// creation never collides.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create mints a session with a fresh UUID and registers it.
func (r *Registry) Create(a assistant.Assistant, kind transport.Kind) *Session {
	s := newSession(uuid.NewString(), a, kind)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Remove deregisters a finished session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// List snapshots the live sessions.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
