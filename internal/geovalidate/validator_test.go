package geovalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/argofloatchat/queryresolver/internal/catalog"
)

func TestValidateRefusesAtlantic(t *testing.T) {
	v := New(catalog.New())
	res := v.Validate("What is the temperature in the Atlantic Ocean?")
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "Atlantic Ocean")
}

func TestValidatePassesSupportedRegion(t *testing.T) {
	v := New(catalog.New())
	res := v.Validate("floats in the Arabian Sea")
	assert.True(t, res.Valid)
}

func TestValidatePassesWithNoRegion(t *testing.T) {
	v := New(catalog.New())
	res := v.Validate("how many profiles in 2023")
	assert.True(t, res.Valid)
}
