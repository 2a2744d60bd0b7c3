package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/classify"
	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/entities"
	"github.com/argofloatchat/queryresolver/internal/geovalidate"
	"github.com/argofloatchat/queryresolver/internal/llmgateway"
	"github.com/argofloatchat/queryresolver/internal/retrieval"
	"github.com/argofloatchat/queryresolver/internal/shaper"
	"github.com/argofloatchat/queryresolver/internal/sqlgen"
	"github.com/argofloatchat/queryresolver/internal/visualize"
)

type stubBackend struct{}

func (stubBackend) Name() string { return "stub" }
func (stubBackend) Complete(ctx context.Context, req llmgateway.Request) (string, error) {
	return "ok", nil
}

type stubRelationalStore struct{ rows []map[string]any; count int }

func (s *stubRelationalStore) Query(ctx context.Context, sqlText string) ([]map[string]any, error) {
	return s.rows, nil
}
func (s *stubRelationalStore) Count(ctx context.Context, sqlText string) (int, error) {
	return s.count, nil
}
func (s *stubRelationalStore) FloatExists(ctx context.Context, id domain.FloatID) (bool, error) {
	return false, nil
}
func (s *stubRelationalStore) FloatDateRange(ctx context.Context, id domain.FloatID) (domain.Float, error) {
	return domain.Float{}, nil
}
func (s *stubRelationalStore) SimilarFloatIDs(ctx context.Context, prefix string, limit int) ([]domain.FloatID, error) {
	return nil, nil
}
func (s *stubRelationalStore) Stats(ctx context.Context) (domain.DBStats, error) {
	return domain.DBStats{}, nil
}
func (s *stubRelationalStore) Ping(ctx context.Context) error { return nil }

type stubVectorStore struct{}

func (stubVectorStore) Search(ctx context.Context, text string, topK int) ([]domain.VectorHit, error) {
	return nil, nil
}
func (stubVectorStore) Ping(ctx context.Context) error { return nil }

func buildTestOrchestrator(rows []map[string]any, count int) *Orchestrator {
	cat := catalog.New()
	extractor := entities.New(cat)
	classifier := classify.New(extractor, nil, nil)
	validator := geovalidate.New(cat)
	synth := sqlgen.New(cat, nil, nil)
	sql := &stubRelationalStore{rows: rows, count: count}
	vec := stubVectorStore{}
	coord := retrieval.New(sql, vec, synth, cat, nil)
	respShaper := shaper.New(sql, nil, nil)
	builder := visualize.New(nil, nil)
	gateway := llmgateway.New(stubBackend{}, nil, nil, 0, nil)
	return New(classifier, validator, coord, respShaper, builder, sql, vec, gateway, nil)
}

func TestProcessQueryAlwaysReturnsResult(t *testing.T) {
	o := buildTestOrchestrator(nil, 0)
	result := o.ProcessQuery(context.Background(), "how many profiles in 2023", 25)
	require.NotNil(t, result)
	assert.True(t, result.Success)
}

func TestProcessQueryRefusesUnsupportedRegion(t *testing.T) {
	o := buildTestOrchestrator(nil, 0)
	result := o.ProcessQuery(context.Background(), "What is the temperature in the Atlantic Ocean?", 25)
	assert.True(t, result.Success)
	assert.Contains(t, result.Answer, "Atlantic Ocean")
	assert.True(t, result.Retrieved.Empty())
}

func TestProcessQueryCoverageInfoShortCircuit(t *testing.T) {
	o := buildTestOrchestrator(nil, 0)
	result := o.ProcessQuery(context.Background(), "what data coverage do you have?", 25)
	assert.True(t, result.Success)
	assert.Contains(t, result.Answer, "Arabian Sea")
}

func TestProcessQueryForcesSQLForDataBearingTokens(t *testing.T) {
	o := buildTestOrchestrator([]map[string]any{{"count": 3}}, 3)
	result := o.ProcessQuery(context.Background(), "show me the temperature data", 25)
	assert.Equal(t, domain.VariantSQL, result.Classification.Variant)
	assert.Equal(t, 1.0, result.Classification.Confidence)
}

func TestHealthCheck(t *testing.T) {
	o := buildTestOrchestrator(nil, 0)
	status := o.HealthCheck(context.Background())
	assert.True(t, status.OverallOK)
}
