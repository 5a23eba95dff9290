package convo

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voicegate/voicegate/internal/httputil"
	"github.com/voicegate/voicegate/internal/metrics"
)

// OllamaClient streams chat completions from an Ollama server.
type OllamaClient struct {
	url       string
	model     string
	maxTokens int
	client    *http.Client
}

// NewOllamaClient creates an Ollama chat backend.
func NewOllamaClient(url, model string, maxTokens, poolSize int) *OllamaClient {
	return &OllamaClient{
		url:       url,
		model:     model,
		maxTokens: maxTokens,
		client:    httputil.NewPooledClient(poolSize, 60*time.Second),
	}
}

// Chat sends the full message list and accumulates the streamed reply.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message) (string, error) {
	reqBody := ollamaRequest{
		Model:    c.model,
		Stream:   true,
		Options:  ollamaOptions{NumPredict: c.maxTokens},
		Messages: messages,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.Errors.WithLabelValues("llm", "http").Inc()
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.Errors.WithLabelValues("llm", "status").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, body)
	}

	var text strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		var chunk ollamaStreamChunk
		if json.Unmarshal(scanner.Bytes(), &chunk) != nil {
			continue
		}
		if chunk.Done {
			break
		}
		text.WriteString(chunk.Message.Content)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read ollama stream: %w", err)
	}

	return text.String(), nil
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Stream   bool          `json:"stream"`
	Messages []Message     `json:"messages"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict"`
}

type ollamaStreamChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}
