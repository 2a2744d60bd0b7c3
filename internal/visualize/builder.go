// Package visualize implements the Visualization Builder: coordinate
// sequences, GeoJSON, time series, and LLM-generated plotting snippets
// with a hardcoded fallback. Grounded on original_source's
// visualization_generator.py.
package visualize

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/llmgateway"
)

// Builder produces VisualizationPayloads from retrieved data.
type Builder struct {
	gateway *llmgateway.Gateway
	log     *zap.Logger
}

// New builds a Builder.
func New(gateway *llmgateway.Gateway, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{gateway: gateway, log: log}
}

// Build assembles a payload from SQL rows and vector hits carrying
// latitude/longitude/date/profile_id/float_id fields. Errors never
// propagate: per §7's VisualizationFailure kind, a failure is attached as
// payload.Error rather than failing the Result.
func (b *Builder) Build(ctx context.Context, query string, data domain.RetrievedData) domain.VisualizationPayload {
	points := collectPoints(data)
	if len(points) == 0 {
		return domain.VisualizationPayload{Error: "no location-bearing records to visualize"}
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })

	payload := domain.VisualizationPayload{
		Coordinates: points,
		TimeSeries:  points,
		GeoJSON:     buildGeoJSON(points),
	}
	bbox, center := boundingBox(points)
	payload.BoundingBox = &bbox
	payload.Center = &center

	if impliesCodeSnippet(query) {
		snippet, err := b.generateSnippet(ctx, query, points)
		if err != nil {
			b.log.Warn("visualization snippet generation failed, using fallback", zap.Error(err))
			snippet = fallbackSnippet()
		}
		payload.CodeSnippet = snippet
	}

	return payload
}

func collectPoints(data domain.RetrievedData) []domain.TimedPoint {
	var out []domain.TimedPoint
	for _, r := range data.SQLRows {
		lat, latOK := toFloat(r["latitude"])
		lon, lonOK := toFloat(r["longitude"])
		if !latOK || !lonOK {
			continue
		}
		out = append(out, domain.TimedPoint{
			Timestamp: cast.ToTime(r["profile_date"]),
			Lat:       lat,
			Lon:       lon,
			ProfileID: domain.ProfileID(cast.ToString(r["profile_id"])),
			FloatID:   domain.FloatID(cast.ToString(r["float_id"])),
		})
	}
	for _, h := range data.VectorHits {
		lat, latOK := toFloat(h.Metadata["latitude"])
		lon, lonOK := toFloat(h.Metadata["longitude"])
		if !latOK || !lonOK {
			continue
		}
		out = append(out, domain.TimedPoint{
			Timestamp: cast.ToTime(h.Metadata["date"]),
			Lat:       lat,
			Lon:       lon,
			ProfileID: domain.ProfileID(cast.ToString(h.Metadata["profile_id"])),
			FloatID:   domain.FloatID(cast.ToString(h.Metadata["float_id"])),
		})
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// buildGeoJSON produces a LineString feature; coordinates are [lon, lat]
// pairs, the swap from the internal [lat, lon] convention.
func buildGeoJSON(points []domain.TimedPoint) map[string]any {
	coords := make([][2]float64, len(points))
	for i, p := range points {
		coords[i] = [2]float64{p.Lon, p.Lat}
	}
	return map[string]any{
		"type": "FeatureCollection",
		"features": []any{
			map[string]any{
				"type": "Feature",
				"geometry": map[string]any{
					"type":        "LineString",
					"coordinates": coords,
				},
				"properties": map[string]any{},
			},
		},
	}
}

func boundingBox(points []domain.TimedPoint) (domain.Rectangle, domain.LatLon) {
	rect := domain.Rectangle{MinLat: points[0].Lat, MaxLat: points[0].Lat, MinLon: points[0].Lon, MaxLon: points[0].Lon}
	for _, p := range points[1:] {
		if p.Lat < rect.MinLat {
			rect.MinLat = p.Lat
		}
		if p.Lat > rect.MaxLat {
			rect.MaxLat = p.Lat
		}
		if p.Lon < rect.MinLon {
			rect.MinLon = p.Lon
		}
		if p.Lon > rect.MaxLon {
			rect.MaxLon = p.Lon
		}
	}
	center := domain.LatLon{Lat: (rect.MinLat + rect.MaxLat) / 2, Lon: (rect.MinLon + rect.MaxLon) / 2}
	return rect, center
}

var codeSnippetTokens = []string{"map", "plot", "geojson"}

func impliesCodeSnippet(query string) bool {
	lower := strings.ToLower(query)
	for _, t := range codeSnippetTokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func (b *Builder) generateSnippet(ctx context.Context, query string, points []domain.TimedPoint) (string, error) {
	if b.gateway == nil {
		return "", fmt.Errorf("visualize: no llm gateway configured")
	}
	return b.gateway.Complete(ctx, llmgateway.Request{
		Messages: []llmgateway.Message{
			{Role: llmgateway.RoleSystem, Content: "Write a short Python snippet using matplotlib or folium to plot the given lat/lon trajectory. Code only."},
			{Role: llmgateway.RoleUser, Content: query},
		},
		Temperature:  0.2,
		MaxTokens:    300,
		UseCodeModel: true,
	})
}

func fallbackSnippet() string {
	return strings.TrimSpace(`
import matplotlib.pyplot as plt

lats = [p["lat"] for p in points]
lons = [p["lon"] for p in points]
plt.plot(lons, lats, marker="o")
plt.xlabel("Longitude")
plt.ylabel("Latitude")
plt.title("Float Trajectory")
plt.show()
`)
}
