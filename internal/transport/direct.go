package transport

import (
	"encoding/base64"
	"io"
	"sync"

	"github.com/gorilla/websocket"
)

// Direct adapts a raw browser/app websocket: inbound audio arrives as bare
// binary frames, outbound media goes out as JSON envelopes.
type Direct struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewDirect wraps an upgraded websocket connection.
func NewDirect(conn *websocket.Conn) *Direct {
	return &Direct{conn: conn}
}

func (d *Direct) Kind() Kind       { return KindDirect }
func (d *Direct) StreamID() string { return "" }

// ReceiveFrame blocks until the next binary audio frame. Text frames are
// ignored; a closed connection yields io.EOF.
func (d *Direct) ReceiveFrame() ([]byte, error) {
	for {
		msgType, data, err := d.conn.ReadMessage()
		if err != nil {
			if isClosedConn(err) {
				return nil, io.EOF
			}
			return nil, &Error{Op: "receive", Err: err}
		}
		if msgType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (d *Direct) SendAudio(audio []byte, transcript string) error {
	env := mediaEnvelope{
		Event:      "media",
		Transcript: transcript,
		Media: &mediaPayload{
			Payload: base64.StdEncoding.EncodeToString(audio),
			Track:   "outbound",
		},
	}
	if err := d.writeJSON(env); err != nil {
		return &Error{Op: "send audio", Err: err}
	}
	return nil
}

// SendTranscript echoes the recognized utterance back for UI display.
func (d *Direct) SendTranscript(text string) error {
	return d.writeJSON(mediaEnvelope{Event: "message", Transcript: text})
}

func (d *Direct) Close() error {
	return d.conn.Close()
}

func (d *Direct) writeJSON(v any) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return d.conn.WriteJSON(v)
}

func isClosedConn(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) || websocket.IsUnexpectedCloseError(err)
}
