package shaper

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/argofloatchat/queryresolver/internal/domain"
)

// rawData implements §4.7 step 4's deterministic, non-LLM formatting.
func (s *Shaper) rawData(query string, class domain.QueryClassification, data domain.RetrievedData) string {
	rows := data.SQLRows

	if isCountOnly(rows) {
		return fmt.Sprintf("Count: %s", formatCount(cast.ToInt(rows[0]["count"])))
	}

	if isYearCountResult(rows) && hasCountIntent(query) {
		return formatYearCountTable(rows)
	}

	if isAggregateResult(rows) {
		return formatAggregateResult(rows[0])
	}

	if isLatitudeBandResult(rows) {
		return formatLatitudeBandResult(rows)
	}

	if data.GenerationMethod == "nearest_floats_direct" {
		return formatNearestFloats(rows)
	}

	return s.formatGroupedByFloat(rows, data.VectorHits, data.TotalCount)
}

func hasCountIntent(query string) bool {
	lower := strings.ToLower(query)
	return strings.Contains(lower, "how many") || strings.Contains(lower, "count") || strings.Contains(lower, "number of")
}

func isCountOnly(rows []map[string]any) bool {
	if len(rows) != 1 {
		return false
	}
	_, hasCount := rows[0]["count"]
	return hasCount && len(rows[0]) == 1
}

func isYearCountResult(rows []map[string]any) bool {
	if len(rows) == 0 {
		return false
	}
	_, hasYear := rows[0]["year"]
	_, hasCount := rows[0]["count"]
	return hasYear && hasCount
}

func formatYearCountTable(rows []map[string]any) string {
	var b strings.Builder
	total := 0
	for _, r := range rows {
		year := cast.ToInt(r["year"])
		count := cast.ToInt(r["count"])
		total += count
		fmt.Fprintf(&b, "%d: %s\n", year, formatCount(count))
	}
	fmt.Fprintf(&b, "Total: %s", formatCount(total))
	return b.String()
}

var aggregateKeys = []string{"min", "max", "avg", "sum", "count"}

func isAggregateResult(rows []map[string]any) bool {
	if len(rows) != 1 {
		return false
	}
	if _, hasFloat := rows[0]["float_id"]; hasFloat {
		return false
	}
	for k := range rows[0] {
		for _, agg := range aggregateKeys {
			if strings.Contains(strings.ToLower(k), agg) {
				return true
			}
		}
	}
	return false
}

var unitByParameter = map[string]string{
	"temperature": "°C",
	"salinity":    "PSU",
	"depth":       "m",
	"pressure":    "m",
}

func formatAggregateResult(row map[string]any) string {
	var b strings.Builder
	for k, v := range row {
		unit := unitForColumn(k)
		fmt.Fprintf(&b, "%s: %v%s\n", k, v, unit)
	}
	return strings.TrimSpace(b.String())
}

func unitForColumn(column string) string {
	lower := strings.ToLower(column)
	for param, unit := range unitByParameter {
		if strings.Contains(lower, param) {
			return unit
		}
	}
	return ""
}

func isLatitudeBandResult(rows []map[string]any) bool {
	if len(rows) == 0 {
		return false
	}
	_, hasLat := rows[0]["latitude"]
	_, hasSurface := rows[0]["surface_temp"]
	_, hasDeep := rows[0]["deep_temp"]
	_, hasFloat := rows[0]["float_id"]
	return hasLat && (hasSurface || hasDeep) && !hasFloat
}

func formatLatitudeBandResult(rows []map[string]any) string {
	var b strings.Builder
	for _, r := range rows {
		lat := cast.ToFloat64(r["latitude"])
		fmt.Fprintf(&b, "%s: ", formatLat(lat))
		if v, ok := r["surface_temp"]; ok {
			fmt.Fprintf(&b, "surface %s ", formatTemperature(cast.ToFloat64(v)))
		}
		if v, ok := r["deep_temp"]; ok {
			fmt.Fprintf(&b, "deep %s", formatTemperature(cast.ToFloat64(v)))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func formatNearestFloats(rows []map[string]any) string {
	type entry struct {
		floatID  string
		distance float64
		lat, lon float64
	}
	entries := make([]entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, entry{
			floatID:  cast.ToString(r["float_id"]),
			distance: cast.ToFloat64(r["distance_km"]),
			lat:      cast.ToFloat64(r["latitude"]),
			lon:      cast.ToFloat64(r["longitude"]),
		})
	}
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. Float %s — %.1f km away at %s, %s\n",
			i+1, e.floatID, e.distance, formatLat(e.lat), formatLon(e.lon))
	}
	return strings.TrimSpace(b.String())
}

// formatGroupedByFloat is the catch-all §4.7 step 4 "otherwise" case:
// group SQL rows and flattened vector hits by float_id, show up to 20
// floats and up to 5 records per float, prefixed with the total count.
func (s *Shaper) formatGroupedByFloat(rows []map[string]any, hits []domain.VectorHit, total int) string {
	grouped := map[string][]map[string]any{}
	order := []string{}
	addRow := func(floatID string, row map[string]any) {
		if _, ok := grouped[floatID]; !ok {
			order = append(order, floatID)
		}
		grouped[floatID] = append(grouped[floatID], row)
	}

	for _, r := range rows {
		addRow(cast.ToString(r["float_id"]), r)
	}
	for _, h := range hits {
		addRow(cast.ToString(h.Metadata["float_id"]), flattenHit(h))
	}

	order = lo.Uniq(order)

	displayed := 0
	var b strings.Builder
	if total > 0 {
		if displayedCount(order, grouped) < total {
			fmt.Fprintf(&b, "Showing %d of %s total records.\n\n", displayedCount(order, grouped), formatCount(total))
		} else {
			fmt.Fprintf(&b, "%s total records.\n\n", formatCount(total))
		}
	}

	for _, floatID := range order {
		if displayed >= 20 {
			break
		}
		displayed++
		fmt.Fprintf(&b, "Float %s:\n", floatID)
		records := grouped[floatID]
		for i, r := range records {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  %v\n", r)
		}
	}
	return strings.TrimSpace(b.String())
}

func displayedCount(order []string, grouped map[string][]map[string]any) int {
	n := 0
	for _, k := range order {
		n += len(grouped[k])
	}
	return n
}

func flattenHit(h domain.VectorHit) map[string]any {
	out := map[string]any{"document": h.Document, "distance": h.Distance}
	for k, v := range h.Metadata {
		out[k] = v
	}
	return out
}
