package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/voicegate/voicegate/internal/metrics"
	"github.com/voicegate/voicegate/internal/prompts"
	"github.com/voicegate/voicegate/internal/stt"
	"github.com/voicegate/voicegate/internal/transport"
	"github.com/voicegate/voicegate/internal/tts"
)

const defaultTurnTimeout = 30 * time.Second

// ReplyGenerator turns a final user utterance into an assistant reply,
// maintaining per-session conversation history.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, sessionID, systemPrompt, retrievedContext, userText string) (string, error)
	Forget(sessionID string)
}

// Synthesizer renders reply text as transport-ready audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, profile tts.Profile) ([]byte, error)
}

// Retriever looks up knowledge-base context for an utterance. Optional.
type Retriever interface {
	RetrieveContext(ctx context.Context, collection, query string) (string, error)
}

// Recorder persists call-log events. Implementations must not block the
// caller. Optional.
type Recorder interface {
	SessionStarted(sessionID, assistantID, transport string)
	TurnCompleted(sessionID string, seq int, userText, replyText string)
	SessionEnded(sessionID string)
}

// Config wires one session's collaborators.
type Config struct {
	Session     *Session
	Transport   transport.Adapter
	Recognizer  stt.Stream
	Engine      ReplyGenerator
	Synth       Synthesizer
	Retriever   Retriever
	Recorder    Recorder
	Registry    *Registry
	Profile     tts.Profile
	TurnTimeout time.Duration
}

// Orchestrator drives one call from handshake to teardown. It owns two
// goroutines: a feed loop pushing inbound frames into recognition, and a
// consume loop turning final transcripts into replies. Transcripts that
// arrive while a reply is in flight stay queued in the recognizer's event
// sequence and are handled in order afterwards.
type Orchestrator struct {
	sess        *Session
	adapter     transport.Adapter
	recognizer  stt.Stream
	engine      ReplyGenerator
	synth       Synthesizer
	retriever   Retriever
	recorder    Recorder
	registry    *Registry
	profile     tts.Profile
	turnTimeout time.Duration

	// turnSeq is touched only from consumeLoop.
	turnSeq int

	closing   chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func NewOrchestrator(cfg Config) *Orchestrator {
	timeout := cfg.TurnTimeout
	if timeout <= 0 {
		timeout = defaultTurnTimeout
	}
	return &Orchestrator{
		sess:        cfg.Session,
		adapter:     cfg.Transport,
		recognizer:  cfg.Recognizer,
		engine:      cfg.Engine,
		synth:       cfg.Synth,
		retriever:   cfg.Retriever,
		recorder:    cfg.Recorder,
		registry:    cfg.Registry,
		profile:     cfg.Profile,
		turnTimeout: timeout,
		closing:     make(chan struct{}),
	}
}

// Run executes the call to completion. It returns nil on a clean hangup and
// the triggering error otherwise. The session is deregistered and its
// conversation history released before Run returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer o.sess.setState(StateClosed)
	defer o.registry.Remove(o.sess.ID)
	defer o.engine.Forget(o.sess.ID)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if o.recorder != nil {
		o.recorder.SessionStarted(o.sess.ID, o.sess.Assistant.ID, string(o.adapter.Kind()))
		defer o.recorder.SessionEnded(o.sess.ID)
	}

	if err := o.recognizer.Start(runCtx); err != nil {
		o.sess.setState(StateClosing)
		_ = o.adapter.Close()
		_ = o.recognizer.Stop()
		return err
	}

	o.greet(runCtx)
	o.sess.setState(StateListening)

	feedDone := make(chan struct{})
	go o.feedLoop(feedDone)

	consumeDone := make(chan struct{})
	go o.consumeLoop(runCtx, consumeDone)

	select {
	case <-o.closing:
	case <-ctx.Done():
		o.beginClose(ctx.Err())
	}

	o.sess.setState(StateClosing)

	_ = o.adapter.Close()
	<-feedDone

	if err := o.recognizer.Stop(); err != nil {
		slog.Warn("recognizer stop", "session_id", o.sess.ID, "error", err)
	}

	// An in-flight turn is allowed to finish; past the turn timeout its
	// context is cancelled and the consume loop unwinds.
	select {
	case <-consumeDone:
	case <-time.After(o.turnTimeout):
		cancel()
		<-consumeDone
	}

	// The recognizer keeps delivering queued events until its channel closes;
	// drain them so its delivery goroutine can exit.
	go func() {
		for range o.recognizer.Events() {
		}
	}()

	if o.closeErr != nil {
		slog.Error("session closed", "session_id", o.sess.ID, "error", o.closeErr)
		return o.closeErr
	}
	slog.Info("session closed", "session_id", o.sess.ID)
	return nil
}

// beginClose records the first close cause and signals teardown. Later calls
// are no-ops, so a transport error and a hangup racing each other resolve to
// whichever came first.
func (o *Orchestrator) beginClose(err error) {
	o.closeOnce.Do(func() {
		o.closeErr = err
		close(o.closing)
	})
}

// greet speaks the assistant's opening line before any user audio arrives.
// A greeting failure is logged and the call proceeds straight to listening.
func (o *Orchestrator) greet(ctx context.Context) {
	o.sess.setState(StateGreeting)

	text := o.sess.Assistant.Greeting
	if text == "" {
		text = prompts.DefaultGreeting
	}

	greetCtx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()
	o.speak(greetCtx, text)
}

func (o *Orchestrator) feedLoop(done chan struct{}) {
	defer close(done)
	for {
		frame, err := o.adapter.ReceiveFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				o.beginClose(nil)
			} else {
				metrics.Errors.WithLabelValues("transport", "receive").Inc()
				o.beginClose(err)
			}
			return
		}
		metrics.AudioFrames.Inc()
		if err := o.recognizer.Feed(frame); err != nil {
			o.beginClose(err)
			return
		}
	}
}

// consumeLoop is the sole consumer of transcript events. Finals are handled
// strictly in arrival order, one turn at a time.
func (o *Orchestrator) consumeLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-o.closing:
			return
		case ev, ok := <-o.recognizer.Events():
			if !ok {
				o.beginClose(nil)
				return
			}
			if !ev.Final {
				continue
			}
			o.sess.setState(StateTranscribing)
			text := strings.TrimSpace(ev.Text)
			if text == "" {
				o.sess.setState(StateListening)
				continue
			}
			o.runTurn(ctx, text)
		}
	}
}

// runTurn handles one final utterance: echo it, gather context, generate a
// reply, speak it. Generation and synthesis failures skip the turn; only
// transport failures end the call.
func (o *Orchestrator) runTurn(ctx context.Context, text string) {
	o.sess.setState(StateResponding)
	defer o.sess.setState(StateListening)

	start := time.Now()
	turnCtx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	if err := o.adapter.SendTranscript(text); err != nil {
		slog.Warn("transcript echo", "session_id", o.sess.ID, "error", err)
	}

	reply, err := o.engine.GenerateReply(turnCtx, o.sess.ID, o.sess.Assistant.SystemPrompt, o.retrieve(turnCtx, text), text)
	if err != nil {
		slog.Error("reply generation failed", "session_id", o.sess.ID, "error", err)
		return
	}

	o.speak(turnCtx, reply)

	if o.recorder != nil {
		o.recorder.TurnCompleted(o.sess.ID, o.turnSeq, text, reply)
	}
	o.turnSeq++

	metrics.TurnsTotal.Inc()
	metrics.TurnDuration.Observe(time.Since(start).Seconds())
}

// speak synthesizes text and ships it over the wire with its transcript.
func (o *Orchestrator) speak(ctx context.Context, text string) {
	audio, err := o.synth.Synthesize(ctx, text, o.sess.Assistant.Voice, o.profile)
	if err != nil {
		slog.Error("synthesis failed", "session_id", o.sess.ID, "error", err)
		return
	}
	if err := o.adapter.SendAudio(audio, text); err != nil {
		metrics.Errors.WithLabelValues("transport", "send").Inc()
		slog.Error("send audio", "session_id", o.sess.ID, "error", err)
		o.beginClose(err)
	}
}

// retrieve fetches knowledge-base context for the utterance. Failures are
// swallowed: the turn proceeds without context.
func (o *Orchestrator) retrieve(ctx context.Context, query string) string {
	if o.retriever == nil || o.sess.Assistant.Collection == "" {
		return ""
	}
	out, err := o.retriever.RetrieveContext(ctx, o.sess.Assistant.Collection, query)
	if err != nil {
		slog.Warn("context retrieval failed", "session_id", o.sess.ID, "error", err)
		return ""
	}
	return out
}
