package shaper

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/argofloatchat/queryresolver/internal/domain"
)

// noResults implements §4.7 step 1.
func (s *Shaper) noResults(ctx context.Context, query string, ents domain.ExtractedEntities) string {
	if len(ents.FloatIDs) > 0 {
		id := ents.FloatIDs[0]
		exists, err := s.store.FloatExists(ctx, id)
		if err == nil && exists {
			f, ferr := s.store.FloatDateRange(ctx, id)
			if ferr == nil {
				return fmt.Sprintf(
					"Float %s has %d profiles spanning %s to %s. Try a query with a date in that range.",
					id, f.ProfileCount, f.FirstProfile.Format("2006-01-02"), f.LastProfile.Format("2006-01-02"),
				)
			}
		}
		if err == nil && !exists {
			return fmt.Sprintf("Float %s was not found in the data store.", id)
		}
	}

	if len(ents.Regions) > 0 || len(ents.Parameters) > 0 {
		var suggestions []string
		suggestions = append(suggestions, ents.Regions...)
		suggestions = append(suggestions, ents.Parameters...)
		return fmt.Sprintf("No matching data was found for this query. Consider broadening your search around: %s.",
			strings.Join(suggestions, ", "))
	}
	return "No matching data was found for this query."
}

// floatNotFound implements §4.7 step 3.
func (s *Shaper) floatNotFound(ctx context.Context, id domain.FloatID) string {
	similar, err := s.store.SimilarFloatIDs(ctx, string(id)[:min(4, len(string(id)))], 5)
	if err != nil || len(similar) == 0 {
		return fmt.Sprintf("Float %s does not exist in the data store.", id)
	}
	names := make([]string, len(similar))
	for i, f := range similar {
		names[i] = string(f)
	}
	return fmt.Sprintf("Float %s does not exist in the data store. Similar float IDs: %s.", id, strings.Join(names, ", "))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// yearComparison implements §4.7 step 2.
func (s *Shaper) yearComparison(ctx context.Context, query string, data domain.RetrievedData) string {
	type yearStats struct {
		year                    int
		tempSum, tempMin, tempMax float64
		salSum, salMin, salMax    float64
		n                         int
		minLat, maxLat, minLon, maxLon float64
	}
	byYear := map[int]*yearStats{}
	order := []int{}

	for _, row := range data.SQLRows {
		year := cast.ToInt(row["year"])
		ys, ok := byYear[year]
		if !ok {
			ys = &yearStats{year: year, tempMin: math.Inf(1), salMin: math.Inf(1), tempMax: math.Inf(-1), salMax: math.Inf(-1),
				minLat: math.Inf(1), maxLat: math.Inf(-1), minLon: math.Inf(1), maxLon: math.Inf(-1)}
			byYear[year] = ys
			order = append(order, year)
		}
		t := cast.ToFloat64(row["surface_temp"])
		sal := cast.ToFloat64(row["surface_sal"])
		lat := cast.ToFloat64(row["latitude"])
		lon := cast.ToFloat64(row["longitude"])
		ys.tempSum += t
		ys.salSum += sal
		ys.n++
		ys.tempMin = minF(ys.tempMin, t)
		ys.tempMax = maxF(ys.tempMax, t)
		ys.salMin = minF(ys.salMin, sal)
		ys.salMax = maxF(ys.salMax, sal)
		ys.minLat = minF(ys.minLat, lat)
		ys.maxLat = maxF(ys.maxLat, lat)
		ys.minLon = minF(ys.minLon, lon)
		ys.maxLon = maxF(ys.maxLon, lon)
	}

	sort.Ints(order)

	equatorial := strings.Contains(strings.ToLower(query), "equator")

	var b strings.Builder
	for _, y := range order {
		ys := byYear[y]
		count := ys.n
		if s.store != nil {
			if freshCount, err := s.freshYearCount(ctx, y, equatorial); err == nil {
				count = freshCount
			}
		}
		avgTemp := ys.tempSum / float64(ys.n)
		avgSal := ys.salSum / float64(ys.n)
		fmt.Fprintf(&b, "%d: %d profiles, surface temperature avg %s (min %s, max %s), surface salinity avg %s (min %s, max %s), region %s to %s, %s to %s\n",
			y, count,
			formatTemperature(avgTemp), formatTemperature(ys.tempMin), formatTemperature(ys.tempMax),
			formatSalinity(avgSal), formatSalinity(ys.salMin), formatSalinity(ys.salMax),
			formatLat(ys.minLat), formatLat(ys.maxLat), formatLon(ys.minLon), formatLon(ys.maxLon),
		)
	}

	if len(order) == 2 {
		y1, y2 := byYear[order[0]], byYear[order[1]]
		tempDelta := y2.tempSum/float64(y2.n) - y1.tempSum/float64(y1.n)
		salDelta := y2.salSum/float64(y2.n) - y1.salSum/float64(y1.n)
		b.WriteString("\nComparison Summary:\n")
		fmt.Fprintf(&b, "Temperature changed by %s from %d to %d (%s)\n", signedTemp(tempDelta), order[0], order[1], direction(tempDelta))
		fmt.Fprintf(&b, "Salinity changed by %s from %d to %d (%s)\n", signedSal(salDelta), order[0], order[1], direction(salDelta))
	}

	return b.String()
}

func (s *Shaper) freshYearCount(ctx context.Context, year int, equatorial bool) (int, error) {
	eqFilter := ""
	if equatorial {
		eqFilter = " AND latitude BETWEEN -5 AND 5"
	}
	sqlText := fmt.Sprintf("SELECT COUNT(*) FROM argo_profiles WHERE EXTRACT(YEAR FROM profile_date) = %d%s", year, eqFilter)
	return s.store.Count(ctx, sqlText)
}

func signedTemp(v float64) string {
	if v >= 0 {
		return "+" + formatTemperature(v)
	}
	return formatTemperature(v)
}

func signedSal(v float64) string {
	if v >= 0 {
		return "+" + formatSalinity(v)
	}
	return formatSalinity(v)
}

func direction(v float64) string {
	if v > 0 {
		return "increase"
	}
	if v < 0 {
		return "decrease"
	}
	return "no change"
}

func minF(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}
func maxF(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}
