// Package convo is the conversation engine: per-session ordered message
// history plus a chat backend that turns a user utterance into a reply.
package convo

import (
	"context"
	"fmt"
	"time"

	"github.com/voicegate/voicegate/internal/metrics"
	"github.com/voicegate/voicegate/internal/prompts"
)

// GenerationError marks a failed reply generation. Turn-scoped: the session
// continues and the caller may retry on the next utterance.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generate reply: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// ChatClient produces one completion for an ordered message list.
type ChatClient interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Engine generates replies and owns the conversation history.
type Engine struct {
	client  ChatClient
	history *History
}

func NewEngine(client ChatClient) *Engine {
	return &Engine{client: client, history: NewHistory()}
}

// History exposes the underlying store, primarily for inspection in tests.
func (e *Engine) History() *History { return e.history }

// GenerateReply appends the user utterance to the session's history, invokes
// the chat backend, commits the reply, and returns it. Retrieved context, if
// any, rides along as an extra system message for this call only and is not
// recorded in the history. The turn is committed only on success, so a
// backend failure leaves the history unchanged.
func (e *Engine) GenerateReply(ctx context.Context, sessionID, systemPrompt, retrievedContext, userText string) (string, error) {
	start := time.Now()

	e.history.Ensure(sessionID, prompts.ForSession(systemPrompt))
	msgs := e.history.Messages(sessionID)

	payload := make([]Message, 0, len(msgs)+2)
	payload = append(payload, msgs[0])
	if retrievedContext != "" {
		payload = append(payload, Message{Role: RoleSystem, Content: prompts.RetrievedContext(retrievedContext)})
	}
	payload = append(payload, msgs[1:]...)
	payload = append(payload, Message{Role: RoleUser, Content: userText})

	reply, err := e.client.Chat(ctx, payload)
	if err != nil {
		metrics.Errors.WithLabelValues("llm", "chat").Inc()
		return "", &GenerationError{Err: err}
	}

	if err := e.history.AppendTurn(sessionID, userText, reply); err != nil {
		return "", &GenerationError{Err: err}
	}

	metrics.StageDuration.WithLabelValues("llm").Observe(time.Since(start).Seconds())
	return reply, nil
}

// Forget releases a session's history once the session ends.
func (e *Engine) Forget(sessionID string) {
	e.history.Remove(sessionID)
}
