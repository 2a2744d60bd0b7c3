// Package shaper implements the Response Shaper: priority-ordered
// deterministic formatters with an LLM prose fallback guarded against
// generic/empty/short responses. Grounded on original_source's
// rag_pipeline.py _generate_response() and its formatter helpers.
package shaper

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/llmgateway"
	"github.com/argofloatchat/queryresolver/internal/retrieval"
)

// Shaper selects a formatter and produces the final answer string.
type Shaper struct {
	store   retrieval.RelationalStore
	gateway *llmgateway.Gateway
	log     *zap.Logger
}

// New builds a Shaper.
func New(store retrieval.RelationalStore, gateway *llmgateway.Gateway, log *zap.Logger) *Shaper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shaper{store: store, gateway: gateway, log: log}
}

var dataBearingTokens = []string{
	"show", "find", "get", "list", "display", "float", "data", "profile",
	"temperature", "salinity", "trajectory", "trajectories", "location",
	"coordinates", "map", "bay", "ocean", "sea", "equator", "near",
}

// IsDataBearing reports whether the query contains any §4.8 data-bearing
// token. Exported so the orchestrator's force-override step (§4.8) and
// this shaper's formatter selection (§4.7 step 4) share one definition.
func IsDataBearing(query string) bool {
	lower := strings.ToLower(query)
	for _, t := range dataBearingTokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

var comparisonKeywords = []string{"compare", "comparison", "vs", "versus"}

func hasComparisonKeywords(query string) bool {
	lower := strings.ToLower(query)
	for _, k := range comparisonKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Shape implements the §4.7 priority-ordered formatter selection.
func (s *Shaper) Shape(ctx context.Context, query string, class domain.QueryClassification, data domain.RetrievedData) string {
	if data.Empty() {
		return s.noResults(ctx, query, class.Entities)
	}

	if hasComparisonKeywords(query) && data.GenerationMethod == "year_comparison_direct" && hasYearColumn(data.SQLRows) {
		return s.yearComparison(ctx, query, data)
	}

	if len(class.Entities.FloatIDs) > 0 && isAllNullSingleRow(data.SQLRows) {
		return s.floatNotFound(ctx, class.Entities.FloatIDs[0])
	}

	if IsDataBearing(query) {
		return s.rawData(query, class, data)
	}

	if s.gateway != nil {
		prose, err := s.llmProse(ctx, query, data)
		if err == nil && !isGenericOrShort(prose) {
			return prose
		}
		s.log.Warn("llm prose fallback to raw-data formatter", zap.Error(err))
	}
	return s.rawData(query, class, data)
}

func (s *Shaper) llmProse(ctx context.Context, query string, data domain.RetrievedData) (string, error) {
	var b strings.Builder
	b.WriteString("Answer the user's question using ONLY the data below. Never invent a value not present here.\n\n")
	b.WriteString("DATA:\n")
	for i, row := range data.SQLRows {
		if i >= 20 {
			break
		}
		fmt.Fprintf(&b, "%v\n", row)
	}
	for i, h := range data.VectorHits {
		if i >= 20 {
			break
		}
		fmt.Fprintf(&b, "%s\n", h.Document)
	}
	return s.gateway.Complete(ctx, llmgateway.Request{
		Messages: []llmgateway.Message{
			{Role: llmgateway.RoleSystem, Content: b.String()},
			{Role: llmgateway.RoleUser, Content: query},
		},
		Temperature: 0.2,
		MaxTokens:   400,
	})
}

var genericResponses = []string{
	"query processed successfully",
	"no data found",
	"no data available",
}

func isGenericOrShort(answer string) bool {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return true
	}
	if len(trimmed) < 50 {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, g := range genericResponses {
		if lower == g {
			return true
		}
	}
	return false
}

func hasYearColumn(rows []map[string]any) bool {
	if len(rows) == 0 {
		return false
	}
	_, ok := rows[0]["year"]
	return ok
}

func isAllNullSingleRow(rows []map[string]any) bool {
	if len(rows) != 1 {
		return false
	}
	for _, v := range rows[0] {
		if v != nil {
			return false
		}
	}
	return true
}
