// Package retrieval looks up knowledge-base context for a user utterance.
// It is a best-effort collaborator: callers treat any failure as an empty
// result and never abort a turn on it.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/voicegate/voicegate/internal/metrics"
)

// Retriever embeds a query and searches a vector knowledge base.
type Retriever struct {
	embedder       *EmbeddingClient
	qdrant         *QdrantClient
	topK           int
	scoreThreshold float64
}

// Config holds configuration for the retriever.
type Config struct {
	Embedder       *EmbeddingClient
	Qdrant         *QdrantClient
	TopK           int
	ScoreThreshold float64
}

// NewRetriever creates a knowledge retrieval client.
func NewRetriever(cfg Config) *Retriever {
	return &Retriever{
		embedder:       cfg.Embedder,
		qdrant:         cfg.Qdrant,
		topK:           cfg.TopK,
		scoreThreshold: cfg.ScoreThreshold,
	}
}

// RetrieveContext embeds the query, searches the collection, and returns
// formatted context. Returns empty string when nothing relevant is found.
func (r *Retriever) RetrieveContext(ctx context.Context, collection, query string) (string, error) {
	start := time.Now()

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	results, err := r.qdrant.Search(ctx, collection, vector, r.topK, r.scoreThreshold)
	if err != nil {
		return "", fmt.Errorf("qdrant search: %w", err)
	}

	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())

	if len(results) == 0 {
		return "", nil
	}
	return formatResults(results), nil
}

func formatResults(results []SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		text, ok := r.Payload["text"].(string)
		if !ok {
			text = fmt.Sprintf("%v", r.Payload["text"])
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n---\n")
}
