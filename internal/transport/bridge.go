package transport

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/gorilla/websocket"
)

// Bridge adapts a telephony media-stream websocket. Every frame is a JSON
// envelope: "start" carries the stream identifier, "media" carries base64
// audio tagged with a track, "stop" ends the stream.
type Bridge struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	// idMu guards streamID, written by the receive loop and read by senders.
	idMu     sync.Mutex
	streamID string
}

// NewBridge wraps an upgraded media-stream websocket connection.
func NewBridge(conn *websocket.Conn) *Bridge {
	return &Bridge{conn: conn}
}

func (b *Bridge) Kind() Kind { return KindBridge }

func (b *Bridge) StreamID() string {
	b.idMu.Lock()
	defer b.idMu.Unlock()
	return b.streamID
}

func (b *Bridge) setStreamID(id string) {
	b.idMu.Lock()
	b.streamID = id
	b.idMu.Unlock()
}

// bridgeFrame covers the inbound control and media envelope variants.
type bridgeFrame struct {
	Event     string `json:"event"`
	StreamSID string `json:"streamSid"`
	Start     *struct {
		StreamSID string `json:"streamSid"`
	} `json:"start"`
	Media *struct {
		Track   string `json:"track"`
		Payload string `json:"payload"`
	} `json:"media"`
}

// ReceiveFrame consumes control frames until the next inbound audio chunk.
// The start frame records the stream identifier; a stop frame ends the
// stream with io.EOF.
func (b *Bridge) ReceiveFrame() ([]byte, error) {
	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			if isClosedConn(err) {
				return nil, io.EOF
			}
			return nil, &Error{Op: "receive", Err: err}
		}

		var frame bridgeFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			return nil, &Error{Op: "receive", Err: fmt.Errorf("decode frame: %w", err)}
		}

		switch frame.Event {
		case "start":
			id := frame.StreamSID
			if frame.Start != nil && frame.Start.StreamSID != "" {
				id = frame.Start.StreamSID
			}
			b.setStreamID(id)
		case "media":
			if frame.Media == nil || frame.Media.Track != "inbound" {
				continue
			}
			audio, err := base64.StdEncoding.DecodeString(frame.Media.Payload)
			if err != nil {
				return nil, &Error{Op: "receive", Err: fmt.Errorf("decode payload: %w", err)}
			}
			return audio, nil
		case "stop":
			return nil, io.EOF
		}
	}
}

func (b *Bridge) SendAudio(audio []byte, transcript string) error {
	env := mediaEnvelope{
		Event:      "media",
		StreamSID:  b.StreamID(),
		Transcript: transcript,
		Media: &mediaPayload{
			Payload: base64.StdEncoding.EncodeToString(audio),
			Track:   "outbound",
		},
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := b.conn.WriteJSON(env); err != nil {
		return &Error{Op: "send audio", Err: err}
	}
	return nil
}

// SendTranscript is a no-op: the telephony leg has no UI to echo to.
func (b *Bridge) SendTranscript(string) error { return nil }

func (b *Bridge) Close() error {
	return b.conn.Close()
}
