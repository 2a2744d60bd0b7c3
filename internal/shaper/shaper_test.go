package shaper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCoordinateNorthEast(t *testing.T) {
	assert.Equal(t, "15.000°N", formatLat(15.0))
	assert.Equal(t, "65.000°E", formatLon(65.0))
}

func TestFormatCoordinateSouthWest(t *testing.T) {
	assert.Equal(t, "10.500°S", formatLat(-10.5))
	assert.Equal(t, "20.250°W", formatLon(-20.25))
}

func TestFormatCountThousandsSeparator(t *testing.T) {
	assert.Equal(t, "1,234,567", formatCount(1234567))
	assert.Equal(t, "42", formatCount(42))
	assert.Equal(t, "-1,000", formatCount(-1000))
}

func TestIsDataBearing(t *testing.T) {
	assert.True(t, IsDataBearing("show me float 1902681 data"))
	assert.False(t, IsDataBearing("summarize recent trends"))
}

func TestIsGenericOrShort(t *testing.T) {
	assert.True(t, isGenericOrShort(""))
	assert.True(t, isGenericOrShort("no data found"))
	assert.True(t, isGenericOrShort("short"))
	assert.False(t, isGenericOrShort("The average surface temperature across all matched profiles was 24.31°C over 128 records."))
}

func TestIsCountOnly(t *testing.T) {
	assert.True(t, isCountOnly([]map[string]any{{"count": 5}}))
	assert.False(t, isCountOnly([]map[string]any{{"count": 5, "year": 2023}}))
}

func TestIsAggregateResultExcludesFloatID(t *testing.T) {
	assert.True(t, isAggregateResult([]map[string]any{{"avg_temperature": 22.1}}))
	assert.False(t, isAggregateResult([]map[string]any{{"avg_temperature": 22.1, "float_id": "1900123"}}))
}
