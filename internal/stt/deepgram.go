package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/voicegate/voicegate/internal/metrics"
)

// DeepgramStream is a live recognition session over the Deepgram listen
// websocket. Audio frames are written as binary messages; transcript results
// arrive as JSON and are delivered through the ordered event queue.
type DeepgramStream struct {
	baseURL string
	apiKey  string
	opts    LiveOptions

	mu       sync.Mutex
	conn     *websocket.Conn
	stopOnce sync.Once
	queue    *eventQueue
}

// NewDeepgramStream creates an unstarted stream. baseURL is the websocket
// origin, e.g. "wss://api.deepgram.com".
func NewDeepgramStream(baseURL, apiKey string, opts LiveOptions) *DeepgramStream {
	return &DeepgramStream{
		baseURL: baseURL,
		apiKey:  apiKey,
		opts:    opts,
		queue:   newEventQueue(),
	}
}

// Start dials the recognition endpoint with the configured profile and
// begins consuming results. A failure returns *StartError.
func (s *DeepgramStream) Start(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/v1/listen?%s", s.baseURL, s.opts.query().Encode())

	header := http.Header{}
	if s.apiKey != "" {
		header.Set("Authorization", "Token "+s.apiKey)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		metrics.Errors.WithLabelValues("stt", "start").Inc()
		return &StartError{Err: err}
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop(conn)
	return nil
}

// Feed writes one audio frame to the stream. Fire-and-forget with respect to
// recognition progress; the write itself is brief.
func (s *DeepgramStream) Feed(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("recognition stream not started")
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("feed audio: %w", err)
	}
	return nil
}

// Events returns the ordered transcript sequence.
func (s *DeepgramStream) Events() <-chan Event { return s.queue.Out() }

// Stop closes the stream and the event sequence. Safe to call repeatedly,
// and before Start has completed.
func (s *DeepgramStream) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		conn := s.conn
		if conn != nil {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
				slog.Debug("recognition close message", "error", err)
			}
		}
		s.mu.Unlock()

		if conn == nil {
			s.queue.Close()
			return
		}
		conn.Close()
	})
	return nil
}

// liveResponse is the subset of the Deepgram result payload we consume.
type liveResponse struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func (s *DeepgramStream) readLoop(conn *websocket.Conn) {
	defer s.queue.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg liveResponse
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type != "" && msg.Type != "Results" {
			continue
		}
		if len(msg.Channel.Alternatives) == 0 {
			continue
		}

		ev := Event{Text: msg.Channel.Alternatives[0].Transcript, Final: msg.IsFinal}
		if ev.Final {
			metrics.TranscriptEvents.WithLabelValues("final").Inc()
		} else {
			metrics.TranscriptEvents.WithLabelValues("interim").Inc()
		}
		s.queue.Push(ev)
	}
}
