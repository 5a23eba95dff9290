// Package session runs the per-call orchestration loop: inbound audio frames
// feed live recognition, final transcripts drive reply generation and
// synthesis, and outbound audio goes back over the same connection.
package session

import (
	"sync"
	"time"

	"github.com/voicegate/voicegate/internal/assistant"
	"github.com/voicegate/voicegate/internal/transport"
)

// State is the lifecycle phase of a call session. Transitions are linear
// except for the Listening/Transcribing/Responding cycle, which repeats once
// per user turn.
type State int

const (
	StateHandshaking State = iota
	StateGreeting
	StateListening
	StateTranscribing
	StateResponding
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateGreeting:
		return "greeting"
	case StateListening:
		return "listening"
	case StateTranscribing:
		return "transcribing"
	case StateResponding:
		return "responding"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one live call. The orchestrator is the only writer of state;
// reads may come from other goroutines (registry listings, admin surfaces).
type Session struct {
	ID        string
	Assistant assistant.Assistant
	Transport transport.Kind
	StartedAt time.Time

	mu    sync.RWMutex
	state State
}

func newSession(id string, a assistant.Assistant, kind transport.Kind) *Session {
	return &Session{
		ID:        id,
		Assistant: a,
		Transport: kind,
		StartedAt: time.Now(),
		state:     StateHandshaking,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	// Once teardown begins the state only moves forward; a turn finishing
	// mid-close must not flip the session back to listening.
	if s.state >= StateClosing && st < s.state {
		s.mu.Unlock()
		return
	}
	s.state = st
	s.mu.Unlock()
}
