package convo

import (
	"fmt"
	"sync"
)

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a session's conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History holds per-session ordered message lists. Each list starts with
// exactly one system message and alternates user/assistant thereafter; a
// turn is committed atomically so a failed generation leaves no orphaned
// user message. Sessions are isolated: operations on one session never
// touch another's list.
type History struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

func NewHistory() *History {
	return &History{sessions: make(map[string][]Message)}
}

// Ensure inserts the system message for a session if it has none. The system
// message is never mutated afterwards.
func (h *History) Ensure(sessionID, systemPrompt string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[sessionID]; ok {
		return
	}
	h.sessions[sessionID] = []Message{{Role: RoleSystem, Content: systemPrompt}}
}

// Messages returns a copy of the session's history. Nil for unknown sessions.
func (h *History) Messages(sessionID string) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msgs, ok := h.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// AppendTurn commits one user/assistant exchange. Rejects appends that would
// break the strict alternation invariant.
func (h *History) AppendTurn(sessionID, userText, assistantText string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	msgs, ok := h.sessions[sessionID]
	if !ok {
		return fmt.Errorf("unknown session %q", sessionID)
	}
	last := msgs[len(msgs)-1].Role
	if last != RoleSystem && last != RoleAssistant {
		return fmt.Errorf("session %q history out of order: last role %s", sessionID, last)
	}

	h.sessions[sessionID] = append(msgs,
		Message{Role: RoleUser, Content: userText},
		Message{Role: RoleAssistant, Content: assistantText},
	)
	return nil
}

// Remove drops a session's history. Identifiers are never reused, so removal
// is safe as soon as the session ends.
func (h *History) Remove(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
}
