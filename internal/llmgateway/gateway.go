// Package llmgateway provides a uniform request/response surface over two
// LLM provider backends, with routing, fallback, and token-budget
// heuristics. Grounded on the call shape of
// _examples/Tangerg-lynx/ai/providers/openai/chat/model.go (simplified to
// single-shot, no tool-calling loop) and
// _examples/theRebelliousNerd-codenerd/internal/embedding/genai.go's
// genai.NewClient usage for the secondary backend.
package llmgateway

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Role mirrors the {system, user, assistant} roles of the external
// interface contract.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role
	Content string
}

// Request is the uniform shape accepted by both backends.
type Request struct {
	Messages     []Message
	Temperature  float64
	MaxTokens    int
	UseCodeModel bool
}

// Backend is implemented by each concrete provider.
type Backend interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrBothBackendsFailed is returned when primary and secondary both fail.
var ErrBothBackendsFailed = errors.New("llmgateway: both backends failed")

// Gateway routes requests between a primary and secondary backend.
type Gateway struct {
	primary   Backend
	secondary Backend
	estimator TokenEstimator
	tokenCap  int
	log       *zap.Logger
}

// TokenEstimator estimates a text's token count for routing decisions.
type TokenEstimator interface {
	Estimate(text string) int
}

// New builds a Gateway. tokenCap is the configured routing threshold above
// which the secondary backend is preferred.
func New(primary, secondary Backend, estimator TokenEstimator, tokenCap int, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{primary: primary, secondary: secondary, estimator: estimator, tokenCap: tokenCap, log: log}
}

var visualizationTokens = []string{"visualiz", "plot", "chart", "code", "snippet", "map", "geojson"}

// prefersSecondary implements the §4.10 routing heuristic: visualization
// or code intent, or an overlong prompt, routes to the secondary backend.
func (g *Gateway) prefersSecondary(req Request) bool {
	if req.UseCodeModel {
		return true
	}
	var all strings.Builder
	for _, m := range req.Messages {
		all.WriteString(strings.ToLower(m.Content))
		all.WriteByte(' ')
	}
	text := all.String()
	for _, t := range visualizationTokens {
		if strings.Contains(text, t) {
			return true
		}
	}
	if g.estimator != nil && g.tokenCap > 0 {
		if g.estimator.Estimate(text) > g.tokenCap {
			return true
		}
	}
	return false
}

// Complete routes the request, falling back to the other backend on
// failure. If both fail, ErrBothBackendsFailed is returned; the caller
// (classifier, synthesizer, shaper) always has a deterministic fallback
// for this case.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	first, second := g.primary, g.secondary
	if g.prefersSecondary(req) {
		first, second = g.secondary, g.primary
	}

	if first != nil {
		out, err := first.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		g.log.Warn("llm backend failed, trying fallback",
			zap.String("backend", first.Name()), zap.Error(err))
	}
	if second != nil {
		out, err := second.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		g.log.Warn("llm fallback backend failed", zap.String("backend", second.Name()), zap.Error(err))
	}
	return "", ErrBothBackendsFailed
}

// Ping issues a cheap completion probe to verify at least one backend is
// reachable, for health_check().
func (g *Gateway) Ping(ctx context.Context) error {
	_, err := g.Complete(ctx, Request{
		Messages:  []Message{{Role: RoleUser, Content: "ping"}},
		MaxTokens: 1,
	})
	return err
}

// EstimateTokens estimates the number of tokens in text. Falls back to a
// word-count x 1.3 heuristic per §4.10 when no tokenizer-backed estimator
// is configured.
func (g *Gateway) EstimateTokens(text string) int {
	if g.estimator != nil {
		return g.estimator.Estimate(text)
	}
	return WordCountEstimate(text)
}

// WordCountEstimate is the word-count x 1.3 approximation from §4.10.
func WordCountEstimate(text string) int {
	words := len(strings.Fields(text))
	return int(float64(words) * 1.3)
}
