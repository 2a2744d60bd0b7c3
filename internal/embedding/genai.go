// Package embedding provides the query-time embedding client bound into
// the vector store's Embedder contract. Grounded on
// _examples/theRebelliousNerd-codenerd/internal/embedding/genai.go's
// GenAIEngine: same client construction and EmbedContent call, trimmed
// to the single-text query-time path (no ingestion-time batching).
package embedding

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const outputDimensionality = 3072

func int32Ptr(i int32) *int32 { return &i }

// GenAIEngine embeds query text with Google's Gemini embedding API.
type GenAIEngine struct {
	client *genai.Client
	model  string
}

// NewGenAIEngine builds an embedding engine bound to model (defaults to
// "gemini-embedding-001" when empty).
func NewGenAIEngine(ctx context.Context, apiKey, model string) (*GenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding: genai api key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("embedding: new genai client: %w", err)
	}
	return &GenAIEngine{client: client, model: model}, nil
}

// Embed implements the vector store's Embedder contract for a single
// query string.
func (e *GenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: int32Ptr(outputDimensionality),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: embed content: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding: no embeddings returned")
	}
	return result.Embeddings[0].Values, nil
}
