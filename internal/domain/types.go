// Package domain holds the core data shapes shared across the query
// resolution pipeline. Types here are plain, immutable value objects; no
// component mutates another component's domain values.
package domain

import "time"

// FloatID and ProfileID are opaque identifiers. They are never parsed as
// numbers even though their textual form is numeric.
type FloatID string
type ProfileID string

// Comparator is a numeric comparison operator extracted from free text.
type Comparator string

const (
	ComparatorGt  Comparator = "gt"
	ComparatorGte Comparator = "gte"
	ComparatorLt  Comparator = "lt"
	ComparatorLte Comparator = "lte"
	ComparatorEq  Comparator = "eq"
)

// NumericComparison is an (operator, value) pair, e.g. "> 1000".
type NumericComparison struct {
	Operator Comparator
	Value    float64
}

// LatLon is a signed decimal coordinate pair.
type LatLon struct {
	Lat float64
	Lon float64
}

// Float describes a single ARGO float.
type Float struct {
	ID             FloatID
	DeployLat      float64
	DeployLon      float64
	Institution    string
	Status         string
	ProfileCount   int
	FirstProfile   time.Time
	LastProfile    time.Time
}

// Profile is one vertical measurement set from a single float.
type Profile struct {
	ID        ProfileID
	FloatID   FloatID
	Latitude  float64
	Longitude float64
	Timestamp time.Time

	Pressure    []float64
	Depth       []float64
	Temperature []float64
	Salinity    []float64
	BGC         map[string][]float64 // dissolved_oxygen, ph, nitrate, chlorophyll
}

// Region is a named closed lat/lon rectangle, with an optional coarser
// broadening rectangle used when strict filtering returns nothing.
type Region struct {
	Name     string
	Keywords []string
	Rect     Rectangle
	Broader  *Rectangle
}

// Rectangle is a closed latitude/longitude bounding box.
type Rectangle struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether a point lies within the closed rectangle.
func (r Rectangle) Contains(lat, lon float64) bool {
	return lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon
}

// Intersects reports whether two rectangles overlap.
func (r Rectangle) Intersects(o Rectangle) bool {
	return r.MinLat <= o.MaxLat && r.MaxLat >= o.MinLat &&
		r.MinLon <= o.MaxLon && r.MaxLon >= o.MinLon
}

// ExtractedEntities is the best-effort entity set pulled from a query.
type ExtractedEntities struct {
	Parameters  []string
	Regions     []string
	DateExprs   []string
	FloatIDs    []FloatID
	ProfileIDs  []ProfileID
	Comparisons []NumericComparison
	Coordinates *LatLon
}

// Merge unions two entity sets, deduplicating string-valued fields.
func (e ExtractedEntities) Merge(o ExtractedEntities) ExtractedEntities {
	out := ExtractedEntities{
		Parameters:  dedupStrings(append(append([]string{}, e.Parameters...), o.Parameters...)),
		Regions:     dedupStrings(append(append([]string{}, e.Regions...), o.Regions...)),
		DateExprs:   dedupStrings(append(append([]string{}, e.DateExprs...), o.DateExprs...)),
		FloatIDs:    dedupFloatIDs(append(append([]FloatID{}, e.FloatIDs...), o.FloatIDs...)),
		ProfileIDs:  dedupProfileIDs(append(append([]ProfileID{}, e.ProfileIDs...), o.ProfileIDs...)),
		Comparisons: append(append([]NumericComparison{}, e.Comparisons...), o.Comparisons...),
	}
	if e.Coordinates != nil {
		out.Coordinates = e.Coordinates
	} else if o.Coordinates != nil {
		out.Coordinates = o.Coordinates
	}
	return out
}

func dedupStrings(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func dedupFloatIDs(in []FloatID) []FloatID {
	seen := map[FloatID]struct{}{}
	out := make([]FloatID, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func dedupProfileIDs(in []ProfileID) []ProfileID {
	seen := map[ProfileID]struct{}{}
	out := make([]ProfileID, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// QueryVariant is the classifier's routing decision.
type QueryVariant string

const (
	VariantSQL    QueryVariant = "sql"
	VariantVector QueryVariant = "vector"
	VariantHybrid QueryVariant = "hybrid"
)

// QueryClassification is the fused routing decision for one query.
type QueryClassification struct {
	Variant    QueryVariant
	Confidence float64
	Rationale  string
	Entities   ExtractedEntities
}

// VectorHit is one semantic search result.
type VectorHit struct {
	ID       string
	Document string
	Metadata map[string]any
	Distance float64
	// Broadened is set when this hit survived only after the coordinator
	// broadened a region's strict rectangle to its coarser alternate.
	Broadened bool
}

// DBStats is a lightweight snapshot of store-side counters attached to a
// retrieval for display/debug purposes.
type DBStats struct {
	TotalProfiles int
	TotalFloats   int
}

// RetrievedData is everything gathered for one query.
type RetrievedData struct {
	SQLRows          []map[string]any
	VectorHits       []VectorHit
	SQLText          string
	GenerationMethod string
	TotalCount       int
	Stats            DBStats
}

// Empty reports whether nothing at all was retrieved.
func (r RetrievedData) Empty() bool {
	return len(r.SQLRows) == 0 && len(r.VectorHits) == 0
}

// VisualizationPayload is the data (not rendering) produced for
// location-bearing queries.
type VisualizationPayload struct {
	Coordinates []TimedPoint
	GeoJSON     map[string]any
	TimeSeries  []TimedPoint
	BoundingBox *Rectangle
	Center      *LatLon
	CodeSnippet string
	Error       string
}

// TimedPoint is one point in a coordinate or time-series sequence.
type TimedPoint struct {
	Timestamp time.Time
	Lat       float64
	Lon       float64
	ProfileID ProfileID
	FloatID   FloatID
}

// ResultMetadata carries summary fields about how a Result was produced.
type ResultMetadata struct {
	QueryType    QueryVariant
	Confidence   float64
	DataSources  []string
	ResultCount  int
	GenerationMethod string
}

// Result is the pipeline's single return type. Every invocation of
// process_query returns exactly one of these; it never raises.
type Result struct {
	Query          string
	Classification QueryClassification
	Retrieved      RetrievedData
	Answer         string
	Visualization  *VisualizationPayload
	Metadata       ResultMetadata
	Success        bool
	ErrorKind      string
}
