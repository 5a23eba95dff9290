package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/voicegate/voicegate/internal/httputil"
)

// QdrantClient interacts with Qdrant's REST API.
type QdrantClient struct {
	url    string
	client *http.Client
}

// NewQdrantClient creates a Qdrant REST client.
func NewQdrantClient(url string, poolSize int) *QdrantClient {
	return &QdrantClient{
		url:    url,
		client: httputil.NewPooledClient(poolSize, 30*time.Second),
	}
}

// SearchResult holds a single search hit.
type SearchResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// Search finds nearest neighbors in a collection.
func (q *QdrantClient) Search(ctx context.Context, collection string, vector []float64, topK int, scoreThreshold float64) ([]SearchResult, error) {
	body, err := json.Marshal(qdrantSearchRequest{
		Vector:         vector,
		Limit:          topK,
		ScoreThreshold: scoreThreshold,
		WithPayload:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", q.url+"/collections/"+collection+"/points/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search status %d", resp.StatusCode)
	}

	var result qdrantSearchResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return result.Result, nil
}

type qdrantSearchRequest struct {
	Vector         []float64 `json:"vector"`
	Limit          int       `json:"limit"`
	ScoreThreshold float64   `json:"score_threshold"`
	WithPayload    bool      `json:"with_payload"`
}

type qdrantSearchResponse struct {
	Result []SearchResult `json:"result"`
}
