// Package qdrant implements the vector store contract over Qdrant.
// Grounded on
// _examples/Tangerg-lynx/ai/providers/vectorstores/qdrant/store.go's
// VectorStoreConfig/initialize/buildQueryPoints pattern, simplified to
// drop the generic AST filter-expression converter (converter.go) in
// favor of the fixed semantic-search-by-string contract this pipeline
// actually needs.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/pkg/ptr"
)

// Embedder turns query text into a vector for semantic search. A concrete
// embedding backend (OpenAI/Gemini embeddings) is injected by the caller;
// this keeps the store itself provider-agnostic.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the Qdrant-backed vector store implementation.
type Store struct {
	client     *qdrant.Client
	collection string
	embedder   Embedder
	minScore   float32
}

// New connects to Qdrant at addr and binds to collection.
func New(addr, collection string, embedder Embedder, minScore float32) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: addr})
	if err != nil {
		return nil, fmt.Errorf("qdrant: new client: %w", err)
	}
	return &Store{client: client, collection: collection, embedder: embedder, minScore: minScore}, nil
}

// EnsureCollection creates the collection if it does not already exist.
func (s *Store) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("qdrant: collection exists: %w", err)
	}
	if exists {
		return nil
	}
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

// Upsert stores a document with its embedding and metadata payload.
func (s *Store) Upsert(ctx context.Context, id string, vector []float32, document string, metadata map[string]any) error {
	if id == "" {
		id = uuid.NewString()
	}
	payload, err := qdrant.TryValueMap(metadata)
	if err != nil {
		return fmt.Errorf("qdrant: convert metadata payload: %w", err)
	}
	payload["document"] = qdrant.NewValueString(document)

	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(id),
				Vectors: qdrant.NewVectors(vector...),
				Payload: payload,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert: %w", err)
	}
	return nil
}

// Search implements the VectorStore contract's semantic search.
func (s *Store) Search(ctx context.Context, text string, topK int) ([]domain.VectorHit, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("qdrant: embed query: %w", err)
	}

	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vec...),
		ScoreThreshold: ptr.Pointer(s.minScore),
		Limit:          ptr.Pointer(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query: %w", err)
	}

	hits := make([]domain.VectorHit, 0, len(resp))
	for _, p := range resp {
		meta := map[string]any{}
		doc := ""
		for k, v := range p.GetPayload() {
			if k == "document" {
				doc = v.GetStringValue()
				continue
			}
			meta[k] = valueToAny(v)
		}
		hits = append(hits, domain.VectorHit{
			ID:       p.GetId().GetUuid(),
			Document: doc,
			Metadata: meta,
			Distance: float64(p.GetScore()),
		})
	}
	return hits, nil
}

func valueToAny(v *qdrant.Value) any {
	switch v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return v.GetStringValue()
	case *qdrant.Value_DoubleValue:
		return v.GetDoubleValue()
	case *qdrant.Value_IntegerValue:
		return v.GetIntegerValue()
	case *qdrant.Value_BoolValue:
		return v.GetBoolValue()
	default:
		return nil
	}
}

// Ping verifies connectivity for health_check().
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("qdrant: health check: %w", err)
	}
	return nil
}
