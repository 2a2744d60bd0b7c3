package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/classify"
	"github.com/argofloatchat/queryresolver/internal/config"
	"github.com/argofloatchat/queryresolver/internal/embedding"
	"github.com/argofloatchat/queryresolver/internal/entities"
	"github.com/argofloatchat/queryresolver/internal/geovalidate"
	"github.com/argofloatchat/queryresolver/internal/llmgateway"
	"github.com/argofloatchat/queryresolver/internal/pipeline"
	"github.com/argofloatchat/queryresolver/internal/retrieval"
	"github.com/argofloatchat/queryresolver/internal/shaper"
	"github.com/argofloatchat/queryresolver/internal/sqlgen"
	"github.com/argofloatchat/queryresolver/internal/store/postgres"
	"github.com/argofloatchat/queryresolver/internal/store/qdrant"
	"github.com/argofloatchat/queryresolver/internal/visualize"
)

// buildOrchestrator constructs every leaf component once and composes
// them top-down, grounded on the teacher's constructor-injection idiom
// (_examples/Tangerg-lynx/ai/rag/pipeline.go's PipelineConfig/New
// pattern): one-time construction at startup, passed by reference, never
// mutated afterward (§9 "global singletons" redesign note).
func buildOrchestrator(ctx context.Context, cfg config.Config, log *zap.Logger) (*pipeline.Orchestrator, error) {
	cat := catalog.New()
	extractor := entities.New(cat)

	var primary llmgateway.Backend
	if cfg.OpenAIAPIKey != "" {
		primary = llmgateway.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	var secondary llmgateway.Backend
	if cfg.GeminiAPIKey != "" {
		backend, err := llmgateway.NewGenAIBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("building gemini backend: %w", err)
		}
		secondary = backend
	}

	tokenizer, err := llmgateway.NewTiktokenCL100KBase()
	if err != nil {
		return nil, fmt.Errorf("building tokenizer: %w", err)
	}

	gateway := llmgateway.New(primary, secondary, tokenizer, cfg.LLMTokenCap, log)

	classifier := classify.New(extractor, gateway, log)
	validator := geovalidate.New(cat)
	synth := sqlgen.New(cat, gateway, log)

	sqlStore, err := postgres.New(cfg.PostgresDSN, log)
	if err != nil {
		return nil, fmt.Errorf("building postgres store: %w", err)
	}

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building embedder: %w", err)
	}

	vectorStore, err := qdrant.New(cfg.QdrantAddr, cfg.QdrantCollection, embedder, 0.5)
	if err != nil {
		return nil, fmt.Errorf("building qdrant store: %w", err)
	}

	coordinator := retrieval.New(sqlStore, vectorStore, synth, cat, log)
	respShaper := shaper.New(sqlStore, gateway, log)
	builder := visualize.New(gateway, log)

	return pipeline.New(classifier, validator, coordinator, respShaper, builder, sqlStore, vectorStore, gateway, log), nil
}

// buildEmbedder wires the query-time embedder (spec.md's shared-resource
// "handle to the vector store's embedding model," in scope regardless of
// the ingestion-time embedding Non-goal). It requires a Gemini API key;
// absent one, it returns noopEmbedder, whose searches always fail.
func buildEmbedder(ctx context.Context, cfg config.Config) (qdrant.Embedder, error) {
	if cfg.GeminiAPIKey == "" {
		return noopEmbedder{}, nil
	}
	return embedding.NewGenAIEngine(ctx, cfg.GeminiAPIKey, cfg.GeminiEmbeddingModel)
}

// noopEmbedder is the Embedder used only when no embedding credential is
// configured; every call returns an error instead of panicking on a nil
// embedder. A vector-only retrieval then fails, and a hybrid retrieval
// returns its SQL results alone.
type noopEmbedder struct{}

func (noopEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("query-time embedding requires a configured embedding provider")
}
