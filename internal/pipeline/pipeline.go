// Package pipeline implements the Pipeline Orchestrator: end-to-end
// control flow, failure handling, and result assembly. Grounded on
// original_source's rag_pipeline.py process_query() in full.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/argofloatchat/queryresolver/internal/classify"
	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/geovalidate"
	"github.com/argofloatchat/queryresolver/internal/llmgateway"
	"github.com/argofloatchat/queryresolver/internal/retrieval"
	"github.com/argofloatchat/queryresolver/internal/shaper"
	"github.com/argofloatchat/queryresolver/internal/visualize"
)

// Orchestrator is the pipeline's single entry point.
type Orchestrator struct {
	classifier *classify.Classifier
	validator  *geovalidate.Validator
	retriever  *retrieval.Coordinator
	shaper     *shaper.Shaper
	visualizer *visualize.Builder
	gateway    *llmgateway.Gateway
	log        *zap.Logger

	sqlStore    retrieval.RelationalStore
	vectorStore retrieval.VectorStore
}

// New builds an Orchestrator.
func New(
	classifier *classify.Classifier,
	validator *geovalidate.Validator,
	retriever *retrieval.Coordinator,
	respShaper *shaper.Shaper,
	visualizer *visualize.Builder,
	sqlStore retrieval.RelationalStore,
	vectorStore retrieval.VectorStore,
	gateway *llmgateway.Gateway,
	log *zap.Logger,
) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		classifier: classifier, validator: validator, retriever: retriever,
		shaper: respShaper, visualizer: visualizer, gateway: gateway,
		sqlStore: sqlStore, vectorStore: vectorStore, log: log,
	}
}

var coverageInfoRe = regexp.MustCompile(`(?i)what data|data coverage|ocean regions|what regions|coverage area`)

var visualizationTriggerTokens = []string{"map", "coordinates", "visualization", "plot", "geojson", "trajectory", "trajectories"}

func wantsVisualization(query string, generationMethod string) bool {
	if generationMethod == "year_comparison_direct" {
		return true
	}
	lower := strings.ToLower(query)
	for _, t := range visualizationTriggerTokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// ProcessQuery is the caller surface's process_query(query, max_results?).
// It always returns a Result; it never panics past this boundary.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query string, maxResults int) (result domain.Result) {
	queryID := uuid.NewString()
	log := o.log.With(zap.String("query_id", queryID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("fatal error in pipeline", zap.Any("panic", r))
			result = errorResult(query, ErrFatal, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if maxResults <= 0 {
		maxResults = 25
	}

	// Step 1: classify.
	class := o.classifier.Classify(ctx, query)
	log.Info("classified query", zap.String("variant", string(class.Variant)), zap.Float64("confidence", class.Confidence))

	// Step 2: coverage-info short circuit.
	if coverageInfoRe.MatchString(query) {
		return domain.Result{
			Query:          query,
			Classification: class,
			Answer:         o.coverageDescription(),
			Success:        true,
			Metadata: domain.ResultMetadata{
				QueryType:  class.Variant,
				Confidence: class.Confidence,
			},
		}
	}

	// Step 3: validate coverage.
	if v := o.validator.Validate(query); !v.Valid {
		return domain.Result{
			Query:          query,
			Classification: class,
			Answer:         v.Message,
			Success:        true,
			Metadata: domain.ResultMetadata{
				QueryType:  class.Variant,
				Confidence: class.Confidence,
			},
		}
	}

	// Step 4: SQL force override, to suppress hallucinated facts from
	// vector-only answers.
	effective := class
	if shaper.IsDataBearing(query) {
		effective.Variant = domain.VariantSQL
		effective.Confidence = 1.0
	}

	// Step 5: retrieve.
	data, err := o.retriever.Retrieve(ctx, effective.Variant, query, effective.Entities, maxResults)
	if err != nil {
		log.Warn("retrieval failed", zap.Error(err))
		return errorResult(query, fmt.Errorf("%w: %v", ErrRetrievalFailure, err), fmt.Sprintf("Retrieval failed: %v", err))
	}

	// Step 6: shape response.
	answer := o.shaper.Shape(ctx, query, effective, data)

	result = domain.Result{
		Query:          query,
		Classification: effective,
		Retrieved:      data,
		Answer:         answer,
		Success:        true,
		Metadata: domain.ResultMetadata{
			QueryType:        effective.Variant,
			Confidence:       effective.Confidence,
			ResultCount:      len(data.SQLRows) + len(data.VectorHits),
			GenerationMethod: data.GenerationMethod,
			DataSources:      dataSources(data),
		},
	}

	// Step 7: visualization.
	if wantsVisualization(query, data.GenerationMethod) {
		payload := o.visualizer.Build(ctx, query, data)
		result.Visualization = &payload
	}

	return result
}

func dataSources(data domain.RetrievedData) []string {
	var sources []string
	if len(data.SQLRows) > 0 {
		sources = append(sources, "relational")
	}
	if len(data.VectorHits) > 0 {
		sources = append(sources, "vector")
	}
	return sources
}

func errorResult(query string, kind error, message string) domain.Result {
	return domain.Result{
		Query:     query,
		Answer:    message,
		Success:   false,
		ErrorKind: kind.Error(),
	}
}

func (o *Orchestrator) coverageDescription() string {
	return "This data store covers: Arabian Sea, Bay of Bengal, Indian Ocean, and the equatorial band (|lat| <= 5). Ask about floats, profiles, temperature, salinity, or trajectories within these regions."
}

// HealthStatus is the health_check() response shape.
type HealthStatus struct {
	RelationalOK bool
	VectorOK     bool
	LLMOK        bool
	OverallOK    bool
}

// HealthCheck pings the relational store, vector store, and LLM gateway
// independently.
func (o *Orchestrator) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{}
	if o.sqlStore != nil {
		status.RelationalOK = o.sqlStore.Ping(ctx) == nil
	}
	if o.vectorStore != nil {
		status.VectorOK = o.vectorStore.Ping(ctx) == nil
	}
	if o.gateway != nil {
		status.LLMOK = o.gateway.Ping(ctx) == nil
	}
	status.OverallOK = status.RelationalOK && status.VectorOK && status.LLMOK
	return status
}
