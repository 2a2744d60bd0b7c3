// Package geovalidate implements the Geographic Validator: refuses a
// query early when its requested region does not intersect the data
// store's coverage. Grounded on original_source's rag_pipeline.py
// _filter_by_geographic_region() (the geographic_validator.py module it
// imports from was not captured into the retrieval pack).
package geovalidate

import (
	"fmt"
	"strings"

	"github.com/argofloatchat/queryresolver/internal/catalog"
)

// Result is the validator's verdict.
type Result struct {
	Valid   bool
	Message string
}

// unsupportedRegionNames are well-known ocean/sea names outside the
// catalog's coverage. The catalog only models the regions it actually
// covers, so detecting an out-of-coverage mention needs its own small
// keyword list rather than a catalog lookup miss (a miss is ambiguous
// between "no region mentioned" and "unsupported region mentioned").
var unsupportedRegionNames = map[string]string{
	"atlantic ocean":  "Atlantic Ocean",
	"pacific ocean":   "Pacific Ocean",
	"mediterranean":   "Mediterranean Sea",
	"caribbean":       "Caribbean Sea",
	"arctic ocean":    "Arctic Ocean",
	"southern ocean":  "Southern Ocean",
	"gulf of mexico":  "Gulf of Mexico",
	"north sea":       "North Sea",
	"baltic sea":      "Baltic Sea",
	"red sea":         "Red Sea",
	"black sea":       "Black Sea",
}

// Validator checks region mentions in a query against the catalog's
// coverage.
type Validator struct {
	cat *catalog.Catalog
}

// New builds a Validator.
func New(cat *catalog.Catalog) *Validator {
	return &Validator{cat: cat}
}

// Validate returns Valid=false with an explanatory message when the query
// names a region whose rectangle is disjoint from the store's coverage,
// or a well-known region the catalog does not model at all. Queries
// naming a supported region, or no region at all, pass through.
func (v *Validator) Validate(query string) Result {
	lower := strings.ToLower(query)
	for kw, label := range unsupportedRegionNames {
		if strings.Contains(lower, kw) {
			return v.refusal(label)
		}
	}

	region, found := v.cat.FindRegion(query)
	if !found {
		return Result{Valid: true}
	}
	if region.Rect.Intersects(v.cat.CoverageRect()) {
		return Result{Valid: true}
	}
	return v.refusal(region.Name)
}

func (v *Validator) refusal(regionName string) Result {
	return Result{
		Valid: false,
		Message: fmt.Sprintf(
			"The data store does not cover %q. Supported regions: %s.",
			strings.TrimSpace(regionName), v.cat.CoverageLabel(),
		),
	}
}
