package sqlgen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/domain"
)

func newTestSynth() *Synthesizer {
	return New(catalog.New(), nil, nil)
}

func TestYearCountDirect(t *testing.T) {
	s := newTestSynth()
	out := s.Generate(context.Background(), "How many profiles in 2023?", domain.ExtractedEntities{})
	require.Equal(t, MethodYearCount, out.GenerationMethod)
	assert.Contains(t, out.SQLText, "EXTRACT(YEAR FROM profile_date) as year")
	assert.Contains(t, out.SQLText, "IN (2023)")
	assert.Contains(t, out.SQLText, "GROUP BY EXTRACT(YEAR FROM profile_date)")
}

func TestYearComparisonDirectWithEquator(t *testing.T) {
	s := newTestSynth()
	out := s.Generate(context.Background(), "Compare temperature near the equator between 2021 and 2022", domain.ExtractedEntities{})
	require.Equal(t, MethodYearComparison, out.GenerationMethod)
	assert.Contains(t, out.SQLText, "latitude BETWEEN -5 AND 5")
	assert.Contains(t, out.SQLText, "EXTRACT(YEAR FROM profile_date) = 2022")
	assert.Contains(t, out.SQLText, "EXTRACT(YEAR FROM profile_date) = 2021")
	assert.Contains(t, out.SQLText, "UNION ALL")
}

func TestNearestFloatsDirect(t *testing.T) {
	s := newTestSynth()
	ents := domain.ExtractedEntities{Coordinates: &domain.LatLon{Lat: 15.0, Lon: 65.0}}
	out := s.Generate(context.Background(), "Find the 10 nearest floats to 15.0°N, 65.0°E", ents)
	require.Equal(t, MethodNearestFloats, out.GenerationMethod)
	assert.Contains(t, out.SQLText, "acos(")
	assert.Contains(t, out.SQLText, "radians(15.000000)")
	assert.Contains(t, out.SQLText, "radians(65.000000)")
	assert.Contains(t, out.SQLText, "ORDER BY distance_km ASC")
	assert.Contains(t, out.SQLText, "LIMIT 10")
}

func TestGeographicDirectRectangle(t *testing.T) {
	s := newTestSynth()
	ents := domain.ExtractedEntities{Coordinates: &domain.LatLon{Lat: 10, Lon: 70}}
	out := s.Generate(context.Background(), "profiles at 10°N, 70°E", ents)
	require.Equal(t, MethodGeographicDirect, out.GenerationMethod)
	assert.Contains(t, out.SQLText, "BETWEEN 9.000000 AND 11.000000")
	assert.Contains(t, out.SQLText, "BETWEEN 69.000000 AND 71.000000")
}

func TestOperatingDurationDirect(t *testing.T) {
	s := newTestSynth()
	out := s.Generate(context.Background(), "floats operating for 5 years", domain.ExtractedEntities{})
	require.Equal(t, MethodOperatingDuration, out.GenerationMethod)
	assert.Contains(t, out.SQLText, "HAVING EXTRACT(EPOCH FROM AGE(MAX(profile_date), MIN(profile_date)))")
}

func TestValidateRejectsDangerousKeywords(t *testing.T) {
	err := Validate("SELECT * FROM argo_profiles; DROP TABLE argo_profiles")
	assert.Error(t, err)
}

func TestValidateRejectsBareArrayAggregate(t *testing.T) {
	err := Validate("SELECT AVG(temperature) FROM argo_profiles")
	assert.Error(t, err)
	assert.NoError(t, Validate("SELECT AVG(temperature[1]) FROM argo_profiles"))
}

func TestFixArrayAggregationRewritesTemperature(t *testing.T) {
	out := fixArrayAggregation("SELECT AVG(temperature) FROM argo_profiles")
	assert.Contains(t, out, "AVG(temperature[1])")
	assert.NotContains(t, out, "AVG(temperature)")
}

func TestCompanionCountSQLDropsOrderAndLimit(t *testing.T) {
	primary := "SELECT profile_id FROM argo_profiles WHERE latitude > 0 ORDER BY profile_date DESC LIMIT 25"
	count := companionCountSQL(primary)
	assert.True(t, strings.HasPrefix(count, "SELECT COUNT(*) FROM argo_profiles"))
	assert.NotContains(t, count, "ORDER BY")
	assert.NotContains(t, count, "LIMIT")
	assert.Contains(t, count, "WHERE latitude > 0")
}

func TestValidateRequiresSelectPrefix(t *testing.T) {
	assert.Error(t, Validate("UPDATE argo_profiles SET latitude = 0"))
}

func TestBuildLLMPromptWiresProfileIDGuidance(t *testing.T) {
	s := newTestSynth()
	ents := domain.ExtractedEntities{ProfileIDs: []domain.ProfileID{"1902681"}}
	prompt := s.buildLLMPrompt("Show profile number 1902681 trajectories", ents)
	assert.Contains(t, prompt, "profile_id LIKE '<id>%'")
	assert.Contains(t, prompt, "profile_id LIKE '1902681%'")
	assert.Contains(t, prompt, "references profile ID(s) 1902681")
}

func TestBuildLLMPromptWiresFloatIDGuidance(t *testing.T) {
	s := newTestSynth()
	ents := domain.ExtractedEntities{FloatIDs: []domain.FloatID{"9999999"}}
	prompt := s.buildLLMPrompt("Show float 9999999 trajectory", ents)
	assert.Contains(t, prompt, "float_id = '<id>'")
	assert.Contains(t, prompt, "references float ID(s) 9999999")
}

func TestGenerateFallsThroughToIntelligentLLMForProfileIDQuery(t *testing.T) {
	s := newTestSynth()
	ents := domain.ExtractedEntities{ProfileIDs: []domain.ProfileID{"1902681"}}
	out := s.Generate(context.Background(), "Show profile number 1902681 trajectories", ents)
	require.Equal(t, MethodIntelligentLLM, out.GenerationMethod)
	assert.Contains(t, out.SQLText, "SELECT COUNT(*) FROM argo_profiles")
}
