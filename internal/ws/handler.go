// Package ws accepts call connections over WebSocket and hands them to the
// session orchestrator. Two endpoints map to the two transports: direct
// sockets from browsers and apps, and telephony bridge media streams.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voicegate/voicegate/internal/assistant"
	"github.com/voicegate/voicegate/internal/metrics"
	"github.com/voicegate/voicegate/internal/session"
	"github.com/voicegate/voicegate/internal/stt"
	"github.com/voicegate/voicegate/internal/transport"
	"github.com/voicegate/voicegate/internal/tts"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16384,
	WriteBufferSize: 16384,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RecognizerFactory opens a fresh recognition stream for one session.
type RecognizerFactory func(opts stt.LiveOptions) stt.Stream

// HandlerConfig holds the collaborators shared by all call sessions.
type HandlerConfig struct {
	Assistants    assistant.Store
	Engine        session.ReplyGenerator
	Synth         session.Synthesizer
	Retriever     session.Retriever
	Recorder      session.Recorder
	Registry      *session.Registry
	NewRecognizer RecognizerFactory

	// BridgeAssistantID selects the assistant answering telephony calls;
	// the bridge carries no metadata to pick one per call.
	BridgeAssistantID string

	MaxConcurrent int
	TurnTimeout   time.Duration
}

// Handler upgrades call connections and runs sessions with admission control.
type Handler struct {
	cfg HandlerConfig
	sem chan struct{}
}

func NewHandler(cfg HandlerConfig) *Handler {
	maxConc := cfg.MaxConcurrent
	if maxConc <= 0 {
		maxConc = 100
	}
	return &Handler{
		cfg: cfg,
		sem: make(chan struct{}, maxConc),
	}
}

// Web handles direct connections: raw binary audio frames in, enveloped
// audio out. The assistant is chosen by the assistant_id query parameter.
func (h *Handler) Web(w http.ResponseWriter, r *http.Request) {
	if !h.admit(w) {
		return
	}
	defer h.release()

	a, err := h.cfg.Assistants.Resolve(r.Context(), r.URL.Query().Get("assistant_id"))
	if err != nil {
		http.Error(w, "unknown assistant", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.runCall(a, transport.NewDirect(conn), stt.WidebandOptions(), tts.WidebandProfile())
}

// Bridge handles telephony media streams: JSON frames with base64 mu-law
// payloads in both directions.
func (h *Handler) Bridge(w http.ResponseWriter, r *http.Request) {
	if !h.admit(w) {
		return
	}
	defer h.release()

	a, err := h.cfg.Assistants.Resolve(r.Context(), h.cfg.BridgeAssistantID)
	if err != nil {
		http.Error(w, "unknown assistant", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.runCall(a, transport.NewBridge(conn), stt.NarrowbandOptions(), tts.NarrowbandProfile())
}

func (h *Handler) admit(w http.ResponseWriter) bool {
	select {
	case h.sem <- struct{}{}:
		return true
	default:
		http.Error(w, "at capacity", http.StatusServiceUnavailable)
		return false
	}
}

func (h *Handler) release() { <-h.sem }

func (h *Handler) runCall(a assistant.Assistant, adapter transport.Adapter, opts stt.LiveOptions, profile tts.Profile) {
	sess := h.cfg.Registry.Create(a, adapter.Kind())

	metrics.SessionsActive.Inc()
	metrics.SessionsTotal.WithLabelValues(string(adapter.Kind())).Inc()
	defer metrics.SessionsActive.Dec()

	slog.Info("call started",
		"session_id", sess.ID,
		"transport", adapter.Kind(),
		"assistant", a.ID,
		"model", opts.Model,
		"sample_rate", opts.SampleRate,
	)

	orch := session.NewOrchestrator(session.Config{
		Session:     sess,
		Transport:   adapter,
		Recognizer:  h.cfg.NewRecognizer(opts),
		Engine:      h.cfg.Engine,
		Synth:       h.cfg.Synth,
		Retriever:   h.cfg.Retriever,
		Recorder:    h.cfg.Recorder,
		Registry:    h.cfg.Registry,
		Profile:     profile,
		TurnTimeout: h.cfg.TurnTimeout,
	})

	if err := orch.Run(context.Background()); err != nil {
		slog.Error("call ended", "session_id", sess.ID, "error", err)
		return
	}
	slog.Info("call ended", "session_id", sess.ID)
}
