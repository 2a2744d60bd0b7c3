package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/domain"
)

func newTestExtractor() *Extractor {
	return New(catalog.New())
}

func TestExtractProfileID(t *testing.T) {
	e := newTestExtractor()
	ents := e.Extract("Show profile 1902681 trajectories as map coordinates")
	assert.Contains(t, ents.ProfileIDs, domain.ProfileID("1902681"))
	assert.NotContains(t, ents.FloatIDs, domain.FloatID("1902681"))
}

func TestExtractFloatIDAfterFloatKeyword(t *testing.T) {
	e := newTestExtractor()
	ents := e.Extract("Float 9999999 temperature data")
	assert.Contains(t, ents.FloatIDs, domain.FloatID("9999999"))
}

func TestExtractParameters(t *testing.T) {
	e := newTestExtractor()
	ents := e.Extract("what is the average temperature and salinity near the coast")
	assert.Contains(t, ents.Parameters, "Temperature")
	assert.Contains(t, ents.Parameters, "Salinity")
}

func TestExtractRegions(t *testing.T) {
	e := newTestExtractor()
	ents := e.Extract("floats in the Arabian Sea")
	assert.Contains(t, ents.Regions, "Arabian Sea")
}

func TestExtractCoordinates(t *testing.T) {
	e := newTestExtractor()
	ents := e.Extract("Find the 10 nearest floats to 15.0°N, 65.0°E")
	if assert.NotNil(t, ents.Coordinates) {
		assert.InDelta(t, 15.0, ents.Coordinates.Lat, 0.0001)
		assert.InDelta(t, 65.0, ents.Coordinates.Lon, 0.0001)
	}
}

func TestExtractCoordinatesSouthWest(t *testing.T) {
	e := newTestExtractor()
	ents := e.Extract("profiles near 10.0°S, 20.0°W")
	if assert.NotNil(t, ents.Coordinates) {
		assert.InDelta(t, -10.0, ents.Coordinates.Lat, 0.0001)
		assert.InDelta(t, -20.0, ents.Coordinates.Lon, 0.0001)
	}
}

func TestExtractComparisons(t *testing.T) {
	e := newTestExtractor()
	ents := e.Extract("temperature > 25 and depth <= 100")
	assert.Len(t, ents.Comparisons, 2)
}

func TestYearsRestrictedToWindow(t *testing.T) {
	years := Years("compare 2017 vs 2023 vs 2026")
	assert.Contains(t, years, 2023)
	assert.NotContains(t, years, 2017)
	assert.NotContains(t, years, 2026)
}
