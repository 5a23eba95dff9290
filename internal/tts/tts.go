// Package tts turns reply text into transport-ready audio. Backends are
// selected through a voice-selector router; the profile picks the codec and
// sample rate matching the session's transport.
package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/voicegate/voicegate/internal/metrics"
)

// Profile selects the audio encoding for a transport.
type Profile struct {
	Encoding   string
	SampleRate int
	Container  string
}

// WidebandProfile is the direct-transport output: 24 kHz linear PCM in a
// WAV container for browser playback.
func WidebandProfile() Profile {
	return Profile{Encoding: "linear16", SampleRate: 24000, Container: "wav"}
}

// NarrowbandProfile is the bridge output: raw 8 kHz mu-law, the telephony
// media-stream codec. Container is empty so backends emit headerless audio.
func NarrowbandProfile() Profile {
	return Profile{Encoding: "mulaw", SampleRate: 8000}
}

// SynthesisError marks a failed synthesis. Turn-scoped: the caller skips the
// turn's audio and continues the session.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string { return fmt.Sprintf("synthesize: %v", e.Err) }
func (e *SynthesisError) Unwrap() error { return e.Err }

// Synthesizer produces audio from text for one voice and profile.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, profile Profile) ([]byte, error)
}

// Router dispatches to the backend named by the voice selector. Selectors
// take the form "backend/voice" (e.g. "deepgram/aura-asteria-en"); a bare
// voice name routes to the fallback backend.
type Router struct {
	backends map[string]Synthesizer
	fallback string
}

// NewRouter creates a router with registered backends and a fallback default.
func NewRouter(backends map[string]Synthesizer, fallback string) *Router {
	return &Router{backends: backends, fallback: fallback}
}

// Engines returns the names of all registered backends.
func (r *Router) Engines() []string {
	names := make([]string, 0, len(r.backends))
	for k := range r.backends {
		names = append(names, k)
	}
	return names
}

// Synthesize routes the voice selector to its backend and records latency.
// All failures surface as *SynthesisError.
func (r *Router) Synthesize(ctx context.Context, text, voice string, profile Profile) ([]byte, error) {
	engine, voiceID := splitSelector(voice)

	backend, ok := r.backends[engine]
	if !ok {
		backend, ok = r.backends[r.fallback]
	}
	if !ok {
		return nil, &SynthesisError{Err: fmt.Errorf("no backend for voice %q", voice)}
	}

	start := time.Now()
	audio, err := backend.Synthesize(ctx, text, voiceID, profile)
	if err != nil {
		metrics.Errors.WithLabelValues("tts", "synth").Inc()
		return nil, &SynthesisError{Err: err}
	}
	metrics.StageDuration.WithLabelValues("tts").Observe(time.Since(start).Seconds())

	return audio, nil
}

func splitSelector(voice string) (engine, voiceID string) {
	if i := strings.IndexByte(voice, '/'); i >= 0 {
		return voice[:i], voice[i+1:]
	}
	return "", voice
}
