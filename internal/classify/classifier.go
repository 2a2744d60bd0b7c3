// Package classify implements the Query Classifier: rule-based keyword
// scoring fused with an LLM classification call. Grounded on
// original_source's query_classifier.py classify_query() /
// _rule_based_classification() / _combine_classifications().
package classify

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/entities"
	"github.com/argofloatchat/queryresolver/internal/llmgateway"
)

var (
	sqlKeywords    = []string{"retrieve", "filter", "show", "count", "list", "find", "get", "data"}
	vectorKeywords = []string{"summarize", "describe", "patterns", "trends", "overview"}
	hybridKeywords = []string{"compare", "analyze", "correlation", "relationship"}

	imperativeRe = regexp.MustCompile(`(?i)^\s*show\s+me\b`)
	numericRe    = regexp.MustCompile(`\d`)
	locationRe   = regexp.MustCompile(`(?i)\b(near|coordinates?|latitude|longitude|bay|sea|ocean|equator)\b`)
	dateRe       = regexp.MustCompile(`(?i)\b(19|20)\d{2}\b`)

	geoFastPathRe = regexp.MustCompile(`(?i)near coordinates|latitude\s*[:=]?\s*-?\d|longitude\s*[:=]?\s*-?\d|\d+\.?\d*\s*°\s*[NSns]\s*,\s*\d+\.?\d*\s*°\s*[EWew]`)
)

// classificationFailureConfidence is the low, fixed confidence used when
// the LLM classification call fails (spec.md §7 ClassificationFailure).
const classificationFailureConfidence = 0.3

// Classifier fuses rule-based scoring with an LLM call.
type Classifier struct {
	extractor *entities.Extractor
	gateway   *llmgateway.Gateway
	log       *zap.Logger
}

// New builds a Classifier.
func New(extractor *entities.Extractor, gateway *llmgateway.Gateway, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{extractor: extractor, gateway: gateway, log: log}
}

// Classify fuses rule and LLM signals into a single QueryClassification.
func (c *Classifier) Classify(ctx context.Context, query string) domain.QueryClassification {
	ents := c.extractor.Extract(query)

	if geoFastPathRe.MatchString(query) {
		return domain.QueryClassification{
			Variant:    domain.VariantSQL,
			Confidence: 0.95,
			Rationale:  "geographic fast path: explicit coordinate tokens",
			Entities:   ents,
		}
	}

	ruleVariant, ruleConf, ruleReason := ruleBasedClassification(query)

	llmVariant, llmConf, llmEnts, err := c.llmClassification(ctx, query)
	if err != nil {
		// ClassificationFailure (spec.md §7): recover by defaulting to
		// Vector retrieval at low confidence, not the rule-based result.
		c.log.Warn("classifier llm call failed, defaulting to low-confidence vector", zap.Error(err))
		return domain.QueryClassification{
			Variant:    domain.VariantVector,
			Confidence: classificationFailureConfidence,
			Rationale:  ruleReason + " (llm unavailable, defaulted to vector)",
			Entities:   ents,
		}
	}

	entities := ents.Merge(llmEnts)

	if ruleVariant == llmVariant {
		conf := ruleConf
		if llmConf > conf {
			conf = llmConf
		}
		return domain.QueryClassification{
			Variant:    ruleVariant,
			Confidence: conf,
			Rationale:  ruleReason + "; llm agrees",
			Entities:   entities,
		}
	}

	conf := llmConf
	if conf > 0.7 {
		conf = 0.7
	}
	return domain.QueryClassification{
		Variant:    llmVariant,
		Confidence: conf,
		Rationale:  "rule/llm disagreement, llm wins (capped)",
		Entities:   entities,
	}
}

func ruleBasedClassification(query string) (domain.QueryVariant, float64, string) {
	lower := strings.ToLower(query)

	sqlScore := countMatches(lower, sqlKeywords)
	vectorScore := countMatches(lower, vectorKeywords)
	hybridScore := countMatches(lower, hybridKeywords)

	if imperativeRe.MatchString(query) {
		sqlScore += 2
	}
	if numericRe.MatchString(query) {
		sqlScore++
	}
	if locationRe.MatchString(query) {
		sqlScore += 2
	}
	if dateRe.MatchString(query) {
		sqlScore++
	}

	variant, top := domain.VariantSQL, sqlScore
	if vectorScore > top {
		variant, top = domain.VariantVector, vectorScore
	}
	if hybridScore > top {
		variant, top = domain.VariantHybrid, hybridScore
	}

	total := sqlScore + vectorScore + hybridScore
	conf := 0.5
	if total > 0 {
		conf = float64(top) / float64(total)
		if conf > 0.95 {
			conf = 0.95
		}
		if conf < 0.3 {
			conf = 0.3
		}
	}
	return variant, conf, "rule-based keyword scoring"
}

func countMatches(lower string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

func (c *Classifier) llmClassification(ctx context.Context, query string) (domain.QueryVariant, float64, domain.ExtractedEntities, error) {
	if c.gateway == nil {
		return domain.VariantVector, 0.3, domain.ExtractedEntities{}, llmgateway.ErrBothBackendsFailed
	}
	resp, err := c.gateway.Complete(ctx, llmgateway.Request{
		Messages: []llmgateway.Message{
			{Role: llmgateway.RoleSystem, Content: "Classify the query as exactly one of: sql, vector, hybrid. Reply with only the single word."},
			{Role: llmgateway.RoleUser, Content: query},
		},
		Temperature: 0,
		MaxTokens:   8,
	})
	if err != nil {
		return "", 0, domain.ExtractedEntities{}, err
	}
	variant := parseVariant(resp)
	return variant, 0.6, domain.ExtractedEntities{}, nil
}

func parseVariant(s string) domain.QueryVariant {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(lower, "hybrid"):
		return domain.VariantHybrid
	case strings.Contains(lower, "vector"):
		return domain.VariantVector
	default:
		return domain.VariantSQL
	}
}
