// Package transport normalizes the two call wire formats behind one adapter:
// direct (browser/app sockets sending raw binary audio frames) and bridge
// (telephony media streams sending JSON-enveloped base64 frames).
package transport

import "fmt"

// Kind identifies the wire format of a call connection.
type Kind string

const (
	KindDirect Kind = "direct"
	KindBridge Kind = "bridge"
)

// Error wraps a connection-level I/O failure. Always fatal to the session.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("transport %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Adapter hides wire-format differences behind a uniform audio-in/audio-out
// contract. Implementations are owned by a single session and are not safe
// for concurrent receives; sends are serialized internally.
type Adapter interface {
	Kind() Kind

	// StreamID returns the telephony stream identifier captured from the
	// bridge start frame. Empty for direct connections.
	StreamID() string

	// ReceiveFrame blocks until the next inbound audio chunk. Returns io.EOF
	// when the connection closes or a bridge stop frame arrives; any other
	// failure is a *Error.
	ReceiveFrame() ([]byte, error)

	// SendAudio frames already-synthesized audio for the wire, annotated with
	// the reply transcript.
	SendAudio(audio []byte, transcript string) error

	// SendTranscript echoes the recognized user utterance for UI display.
	// Best-effort on direct connections; a no-op on the bridge.
	SendTranscript(text string) error

	Close() error
}

// mediaEnvelope is the outbound media frame shared by both transports.
type mediaEnvelope struct {
	Event      string        `json:"event"`
	StreamSID  string        `json:"streamSid,omitempty"`
	Transcript string        `json:"transcript,omitempty"`
	Media      *mediaPayload `json:"media,omitempty"`
}

type mediaPayload struct {
	Payload string `json:"payload"`
	Track   string `json:"track"`
}
