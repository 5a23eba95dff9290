package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const defaultDeepgramVoice = "aura-asteria-en"

// DeepgramSpeaker synthesizes speech through the Deepgram speak API. The
// profile's encoding and sample rate are passed natively, so telephony
// output comes back already mu-law encoded.
type DeepgramSpeaker struct {
	url    string
	apiKey string
	client *http.Client
}

// NewDeepgramSpeaker creates a speak backend. url is the API origin,
// e.g. "https://api.deepgram.com".
func NewDeepgramSpeaker(url, apiKey string, client *http.Client) *DeepgramSpeaker {
	return &DeepgramSpeaker{url: url, apiKey: apiKey, client: client}
}

func (d *DeepgramSpeaker) Synthesize(ctx context.Context, text, voice string, profile Profile) ([]byte, error) {
	if voice == "" {
		voice = defaultDeepgramVoice
	}

	q := url.Values{}
	q.Set("model", voice)
	q.Set("encoding", profile.Encoding)
	q.Set("sample_rate", strconv.Itoa(profile.SampleRate))
	if profile.Container != "" {
		q.Set("container", profile.Container)
	}

	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal speak request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.url+"/v1/speak?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create speak request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Token "+d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speak request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speak status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
