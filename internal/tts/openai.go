package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/voicegate/voicegate/internal/audio"
)

// OpenAISpeaker synthesizes speech through any server exposing the
// /v1/audio/speech endpoint. The server only emits WAV, so telephony
// profiles are transcoded locally: decode, resample to the target rate,
// mu-law encode.
type OpenAISpeaker struct {
	url    string
	model  string
	client *http.Client
}

// NewOpenAISpeaker creates an OpenAI-compatible speech backend.
func NewOpenAISpeaker(url, model string, client *http.Client) *OpenAISpeaker {
	return &OpenAISpeaker{url: url, model: model, client: client}
}

func (o *OpenAISpeaker) Synthesize(ctx context.Context, text, voice string, profile Profile) ([]byte, error) {
	body, err := json.Marshal(struct {
		Input          string `json:"input"`
		Model          string `json:"model"`
		Voice          string `json:"voice"`
		ResponseFormat string `json:"response_format"`
	}{Input: text, Model: o.model, Voice: voice, ResponseFormat: "wav"})
	if err != nil {
		return nil, fmt.Errorf("marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.url+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech status %d", resp.StatusCode)
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}

	if profile.Encoding != "mulaw" {
		return wav, nil
	}
	return transcodeToMulaw(wav, profile.SampleRate)
}

func transcodeToMulaw(wav []byte, targetRate int) ([]byte, error) {
	samples, srcRate, err := audio.WAVToSamples(wav)
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	resampled := audio.Resample(samples, srcRate, targetRate)
	return audio.EncodeUlaw(resampled), nil
}
