package transport

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsPair upgrades one connection server-side and dials it client-side,
// returning both ends.
func wsPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()
	connCh := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connCh <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server = <-connCh:
	case <-time.After(2 * time.Second):
		t.Fatal("server side never upgraded")
	}
	t.Cleanup(func() { server.Close() })
	return server, client
}

func TestDirect_ReceiveFrameReturnsBinarySkipsText(t *testing.T) {
	t.Parallel()
	server, client := wsPair(t)
	d := NewDirect(server)

	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"event":"noise"}`)); err != nil {
		t.Fatalf("write text: %v", err)
	}
	if err := client.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}); err != nil {
		t.Fatalf("write binary: %v", err)
	}

	frame, err := d.ReceiveFrame()
	if err != nil {
		t.Fatalf("ReceiveFrame error: %v", err)
	}
	if string(frame) != string([]byte{1, 2, 3}) {
		t.Fatalf("frame = %v, want [1 2 3]", frame)
	}
}

func TestDirect_ReceiveFrameEOFOnClose(t *testing.T) {
	t.Parallel()
	server, client := wsPair(t)
	d := NewDirect(server)

	deadline := time.Now().Add(time.Second)
	client.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	client.Close()

	if _, err := d.ReceiveFrame(); !errors.Is(err, io.EOF) {
		t.Fatalf("error = %v, want io.EOF", err)
	}
}

func TestDirect_SendAudioEnvelope(t *testing.T) {
	t.Parallel()
	server, client := wsPair(t)
	d := NewDirect(server)

	audio := []byte{9, 8, 7}
	if err := d.SendAudio(audio, "hi there"); err != nil {
		t.Fatalf("SendAudio error: %v", err)
	}

	var env struct {
		Event      string `json:"event"`
		Transcript string `json:"transcript"`
		Media      struct {
			Payload string `json:"payload"`
			Track   string `json:"track"`
		} `json:"media"`
	}
	if err := client.ReadJSON(&env); err != nil {
		t.Fatalf("read envelope: %v", err)
	}
	if env.Event != "media" {
		t.Fatalf("event = %q, want media", env.Event)
	}
	if env.Transcript != "hi there" {
		t.Fatalf("transcript = %q, want %q", env.Transcript, "hi there")
	}
	if env.Media.Track != "outbound" {
		t.Fatalf("track = %q, want outbound", env.Media.Track)
	}
	if got := base64.StdEncoding.EncodeToString(audio); env.Media.Payload != got {
		t.Fatalf("payload = %q, want %q", env.Media.Payload, got)
	}
}

func TestDirect_SendTranscriptMessage(t *testing.T) {
	t.Parallel()
	server, client := wsPair(t)
	d := NewDirect(server)

	if err := d.SendTranscript("what I said"); err != nil {
		t.Fatalf("SendTranscript error: %v", err)
	}
	var msg struct {
		Event      string `json:"event"`
		Transcript string `json:"transcript"`
	}
	if err := client.ReadJSON(&msg); err != nil {
		t.Fatalf("read message: %v", err)
	}
	if msg.Event != "message" || msg.Transcript != "what I said" {
		t.Fatalf("got %+v, want event=message transcript=%q", msg, "what I said")
	}
}

func TestBridge_StartMediaStopFlow(t *testing.T) {
	t.Parallel()
	server, client := wsPair(t)
	b := NewBridge(server)

	writeFrame := func(v any) {
		t.Helper()
		if err := client.WriteJSON(v); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	audio := []byte{5, 5, 5}
	writeFrame(map[string]any{"event": "start", "start": map[string]any{"streamSid": "MZ123"}})
	writeFrame(map[string]any{"event": "media", "media": map[string]any{
		"track": "outbound", "payload": base64.StdEncoding.EncodeToString([]byte{1}),
	}})
	writeFrame(map[string]any{"event": "media", "media": map[string]any{
		"track": "inbound", "payload": base64.StdEncoding.EncodeToString(audio),
	}})
	writeFrame(map[string]any{"event": "stop"})

	frame, err := b.ReceiveFrame()
	if err != nil {
		t.Fatalf("ReceiveFrame error: %v", err)
	}
	if string(frame) != string(audio) {
		t.Fatalf("frame = %v, want %v", frame, audio)
	}
	if b.StreamID() != "MZ123" {
		t.Fatalf("StreamID = %q, want MZ123", b.StreamID())
	}

	if _, err := b.ReceiveFrame(); !errors.Is(err, io.EOF) {
		t.Fatalf("error after stop = %v, want io.EOF", err)
	}
}

func TestBridge_MalformedFrameIsTransportError(t *testing.T) {
	t.Parallel()
	server, client := wsPair(t)
	b := NewBridge(server)

	if err := client.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := b.ReceiveFrame()
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("error type = %T (%v), want *Error", err, err)
	}
}

func TestBridge_SendAudioIncludesStreamSID(t *testing.T) {
	t.Parallel()
	server, client := wsPair(t)
	b := NewBridge(server)

	if err := client.WriteJSON(map[string]any{"event": "start", "start": map[string]any{"streamSid": "MZ9"}}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	if err := client.WriteJSON(map[string]any{"event": "media", "media": map[string]any{
		"track": "inbound", "payload": "",
	}}); err != nil {
		t.Fatalf("write media: %v", err)
	}
	if _, err := b.ReceiveFrame(); err != nil {
		t.Fatalf("ReceiveFrame error: %v", err)
	}

	if err := b.SendAudio([]byte{7}, "reply"); err != nil {
		t.Fatalf("SendAudio error: %v", err)
	}

	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env map[string]any
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env["streamSid"] != "MZ9" {
		t.Fatalf("streamSid = %v, want MZ9", env["streamSid"])
	}
	if env["event"] != "media" {
		t.Fatalf("event = %v, want media", env["event"])
	}
}

func TestBridge_ConcurrentReceiveAndSend(t *testing.T) {
	t.Parallel()
	server, client := wsPair(t)
	b := NewBridge(server)

	payload := base64.StdEncoding.EncodeToString([]byte{1})
	go func() {
		client.WriteJSON(map[string]any{"event": "start", "start": map[string]any{"streamSid": "MZ42"}})
		for i := 0; i < 20; i++ {
			client.WriteJSON(map[string]any{"event": "media", "media": map[string]any{
				"track": "inbound", "payload": payload,
			}})
		}
		client.WriteJSON(map[string]any{"event": "stop"})
	}()

	recvDone := make(chan struct{})
	go func() {
		defer close(recvDone)
		for {
			if _, err := b.ReceiveFrame(); err != nil {
				return
			}
		}
	}()

	for i := 0; i < 20; i++ {
		if err := b.SendAudio([]byte{7}, "reply"); err != nil {
			t.Fatalf("SendAudio error: %v", err)
		}
	}
	<-recvDone

	if got := b.StreamID(); got != "MZ42" {
		t.Fatalf("StreamID = %q, want MZ42", got)
	}
}

func TestBridge_SendTranscriptIsNoop(t *testing.T) {
	t.Parallel()
	server, _ := wsPair(t)
	b := NewBridge(server)
	if err := b.SendTranscript("anything"); err != nil {
		t.Fatalf("SendTranscript error: %v", err)
	}
}
