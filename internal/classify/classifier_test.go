package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/entities"
)

func newTestClassifier() *Classifier {
	return New(entities.New(catalog.New()), nil, nil)
}

func TestGeographicFastPath(t *testing.T) {
	c := newTestClassifier()
	class := c.Classify(context.Background(), "Find floats near coordinates 15.0°N, 65.0°E")
	assert.Equal(t, domain.VariantSQL, class.Variant)
	assert.Equal(t, 0.95, class.Confidence)
}

func TestDefaultsToVectorWithoutLLM(t *testing.T) {
	c := newTestClassifier()
	class := c.Classify(context.Background(), "Show me temperature data near the bay")
	assert.Equal(t, domain.VariantVector, class.Variant)
}

func TestRuleBasedClassificationVectorLeaning(t *testing.T) {
	variant, _, _ := ruleBasedClassification("summarize the overall trends and patterns")
	assert.Equal(t, domain.VariantVector, variant)
}

func TestRuleBasedClassificationHybridLeaning(t *testing.T) {
	variant, _, _ := ruleBasedClassification("analyze the correlation and compare regions")
	assert.Equal(t, domain.VariantHybrid, variant)
}
