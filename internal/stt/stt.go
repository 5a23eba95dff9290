// Package stt exposes streaming speech recognition as a feed-and-consume
// contract: audio goes in frame by frame, transcript events come out of an
// ordered, unbounded sequence.
package stt

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Event is one transcript result. Interim events may be revised; a final
// event is complete and safe to act on.
type Event struct {
	Text  string
	Final bool
}

// Stream is a live recognition session.
type Stream interface {
	// Start opens the recognition stream. A failure is fatal to session
	// start; the caller must not feed audio after an error.
	Start(ctx context.Context) error

	// Feed submits one audio frame. It must not block on recognition
	// progress; frame intake has real-time requirements.
	Feed(data []byte) error

	// Events returns the ordered transcript sequence. The channel closes
	// once the stream shuts down and all pending events are delivered.
	Events() <-chan Event

	// Stop releases the stream. Idempotent, and safe to call even if Start
	// never completed.
	Stop() error
}

// StartError marks a recognition stream that failed to open.
type StartError struct {
	Err error
}

func (e *StartError) Error() string { return fmt.Sprintf("recognition start: %v", e.Err) }
func (e *StartError) Unwrap() error { return e.Err }

// LiveOptions selects the recognition profile. Direct and bridge transports
// carry different codecs, so each gets its own profile.
type LiveOptions struct {
	Model       string
	Encoding    string
	SampleRate  int
	Channels    int
	SmartFormat bool
	Language    string
}

// WidebandOptions is the profile for direct (browser/app) audio:
// 16 kHz linear PCM with punctuation-aware formatting.
func WidebandOptions() LiveOptions {
	return LiveOptions{
		Model:       "nova-3",
		Encoding:    "linear16",
		SampleRate:  16000,
		Channels:    1,
		SmartFormat: true,
		Language:    "en",
	}
}

// NarrowbandOptions is the profile for the telephony bridge:
// 8 kHz mu-law with a phonecall-tuned model.
func NarrowbandOptions() LiveOptions {
	return LiveOptions{
		Model:      "nova-2-phonecall",
		Encoding:   "mulaw",
		SampleRate: 8000,
		Channels:   1,
		Language:   "en",
	}
}

func (o LiveOptions) query() url.Values {
	q := url.Values{}
	q.Set("model", o.Model)
	q.Set("encoding", o.Encoding)
	q.Set("sample_rate", strconv.Itoa(o.SampleRate))
	q.Set("channels", strconv.Itoa(o.Channels))
	if o.SmartFormat {
		q.Set("smart_format", "true")
	}
	if o.Language != "" {
		q.Set("language", o.Language)
	}
	return q
}
