// Package catalog exposes the static, thread-safe schema and geographic
// knowledge consumed by the extractor, synthesizer, validator, and shaper.
// Nothing here performs I/O; it is all constant lookup data.
package catalog

import (
	"strings"

	"github.com/argofloatchat/queryresolver/internal/domain"
)

// Parameter describes one oceanographic measurement channel.
type Parameter struct {
	DisplayName string
	Column      string
	Aliases     []string
	Unit        string
}

// Catalog is the immutable static knowledge base. The zero value is not
// usable; use New().
type Catalog struct {
	regions    []domain.Region
	parameters []Parameter
	schemaText string
}

// New builds the fixed catalog. There is exactly one meaningful instance
// per process; construct once at startup and share by reference.
func New() *Catalog {
	return &Catalog{
		regions:    defaultRegions(),
		parameters: defaultParameters(),
		schemaText: defaultSchemaText(),
	}
}

func defaultRegions() []domain.Region {
	return []domain.Region{
		{
			Name:     "Arabian Sea",
			Keywords: []string{"arabian sea", "arabian"},
			Rect:     domain.Rectangle{MinLat: 8, MaxLat: 25, MinLon: 50, MaxLon: 78},
			Broader:  &domain.Rectangle{MinLat: 0, MaxLat: 30, MinLon: 40, MaxLon: 85},
		},
		{
			Name:     "Bay of Bengal",
			Keywords: []string{"bay of bengal", "bengal"},
			Rect:     domain.Rectangle{MinLat: 5, MaxLat: 22, MinLon: 78, MaxLon: 100},
			Broader:  &domain.Rectangle{MinLat: 0, MaxLat: 25, MinLon: 70, MaxLon: 100},
		},
		{
			Name:     "Indian Ocean",
			Keywords: []string{"indian ocean"},
			Rect:     domain.Rectangle{MinLat: -40, MaxLat: 25, MinLon: 30, MaxLon: 120},
			Broader:  &domain.Rectangle{MinLat: -60, MaxLat: 30, MinLon: 20, MaxLon: 130},
		},
		{
			Name:     "Equatorial Band",
			Keywords: []string{"equator", "equatorial"},
			Rect:     domain.Rectangle{MinLat: -5, MaxLat: 5, MinLon: -180, MaxLon: 180},
			Broader:  nil,
		},
	}
}

func defaultParameters() []Parameter {
	return []Parameter{
		{DisplayName: "Temperature", Column: "temperature", Unit: "°C",
			Aliases: []string{"temperature", "temp"}},
		{DisplayName: "Salinity", Column: "salinity", Unit: "PSU",
			Aliases: []string{"salinity", "psu"}},
		{DisplayName: "Pressure", Column: "pressure", Unit: "m",
			Aliases: []string{"pressure", "depth"}},
		{DisplayName: "Dissolved Oxygen", Column: "dissolved_oxygen", Unit: "µmol/kg",
			Aliases: []string{"dissolved oxygen", "oxygen", "do"}},
		{DisplayName: "pH", Column: "ph", Unit: "",
			Aliases: []string{"ph"}},
		{DisplayName: "Nitrate", Column: "nitrate", Unit: "µmol/kg",
			Aliases: []string{"nitrate"}},
		{DisplayName: "Chlorophyll", Column: "chlorophyll", Unit: "mg/m³",
			Aliases: []string{"chlorophyll", "chlorophyll-a", "chl"}},
		{DisplayName: "BGC", Column: "", Unit: "",
			Aliases: []string{"bgc", "biogeochemical"}},
	}
}

// ArrayColumns lists measurement-array columns that take the surface-sample
// rewrite when bare-aggregated.
var ArrayColumns = []string{"pressure", "depth", "temperature", "salinity",
	"dissolved_oxygen", "ph", "nitrate", "chlorophyll"}

func defaultSchemaText() string {
	return strings.TrimSpace(`
TABLE argo_floats (
  float_id      TEXT PRIMARY KEY,
  deploy_lat    DOUBLE PRECISION,
  deploy_lon    DOUBLE PRECISION,
  institution   TEXT,
  status        TEXT,
  profile_count INTEGER
)

TABLE argo_profiles (
  profile_id   TEXT PRIMARY KEY,
  float_id     TEXT REFERENCES argo_floats(float_id),
  latitude     DOUBLE PRECISION,
  longitude    DOUBLE PRECISION,
  profile_date TIMESTAMP,
  pressure     DOUBLE PRECISION[],
  depth        DOUBLE PRECISION[],
  temperature  DOUBLE PRECISION[],
  salinity     DOUBLE PRECISION[],
  dissolved_oxygen DOUBLE PRECISION[],
  ph               DOUBLE PRECISION[],
  nitrate          DOUBLE PRECISION[],
  chlorophyll      DOUBLE PRECISION[]
)
`)
}

// SchemaText returns the schema description used in LLM prompts.
func (c *Catalog) SchemaText() string { return c.schemaText }

// Parameters returns the recognized parameter vocabulary.
func (c *Catalog) Parameters() []Parameter { return c.parameters }

// Regions returns the fixed region catalog.
func (c *Catalog) Regions() []domain.Region { return c.regions }

// FindRegion looks up a region by exact keyword match against the query
// text (case-insensitive substring match of any of its keywords).
func (c *Catalog) FindRegion(text string) (domain.Region, bool) {
	lower := strings.ToLower(text)
	for _, r := range c.regions {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r, true
			}
		}
	}
	return domain.Region{}, false
}

// CoverageRect is the single contiguous rectangle describing the data
// store's overall geographic coverage. It equals the Indian Ocean's broader
// rectangle and contains every region's strict rectangle except the
// equatorial band, whose longitude span extends past it.
func (c *Catalog) CoverageRect() domain.Rectangle {
	return domain.Rectangle{MinLat: -60, MaxLat: 30, MinLon: 20, MaxLon: 130}
}

// CoverageLabel is the human-readable description of coverage, used in
// refusal messages.
func (c *Catalog) CoverageLabel() string {
	names := make([]string, 0, len(c.regions))
	for _, r := range c.regions {
		names = append(names, r.Name)
	}
	return strings.Join(names, ", ")
}
