// Package entities implements the regex/keyword-based Entity Extractor.
// Grounded on original_source's query_classifier.py _extract_entities().
package entities

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/domain"
)

var (
	profileIDRe   = regexp.MustCompile(`(?i)profile\s*(?:number)?\s*#?(\d{7})`)
	bareProfileRe = regexp.MustCompile(`(?i)(\d{7})\s*profile`)
	floatIDRe     = regexp.MustCompile(`(?i)(?:argo\s+)?float\s*(?:id)?\s*#?(\d{7})`)
	bareDigitRe   = regexp.MustCompile(`\b(\d{7})\b`)

	comparatorRe = regexp.MustCompile(`([><]=?|=)\s*(\d+\.?\d*)`)

	coordDegRe = regexp.MustCompile(`(?i)(-?\d+\.?\d*)\s*°?\s*([NSns])\s*,?\s*(-?\d+\.?\d*)\s*°?\s*([EWew])`)

	yearRe       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	yearMonthRe  = regexp.MustCompile(`\b(19|20)\d{2}-(0[1-9]|1[0-2])\b`)
	isoDateRe    = regexp.MustCompile(`\b(19|20)\d{2}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])\b`)
	lastNRe      = regexp.MustCompile(`(?i)last\s+(\d+)\s+(day|week|month|year)s?`)
	betweenRe    = regexp.MustCompile(`(?i)between\s+(.+?)\s+and\s+(.+)`)
	sinceRe      = regexp.MustCompile(`(?i)since\s+(\S+)`)
)

// Extractor pulls ExtractedEntities out of a raw query string.
type Extractor struct {
	cat *catalog.Catalog
}

// New builds an Extractor bound to the given catalog for parameter and
// region vocabulary lookups.
func New(cat *catalog.Catalog) *Extractor {
	return &Extractor{cat: cat}
}

// Extract is best-effort; an empty ExtractedEntities is a valid result.
func (e *Extractor) Extract(query string) domain.ExtractedEntities {
	var out domain.ExtractedEntities

	out.ProfileIDs = extractProfileIDs(query)
	out.FloatIDs = extractFloatIDs(query, out.ProfileIDs)
	out.Parameters = e.extractParameters(query)
	out.Regions = e.extractRegions(query)
	out.Coordinates = extractCoordinates(query)
	out.DateExprs = extractDates(query)
	out.Comparisons = extractComparisons(query)

	return out
}

func extractProfileIDs(query string) []domain.ProfileID {
	seen := map[string]struct{}{}
	var out []domain.ProfileID
	for _, m := range profileIDRe.FindAllStringSubmatch(query, -1) {
		if _, ok := seen[m[1]]; !ok {
			seen[m[1]] = struct{}{}
			out = append(out, domain.ProfileID(m[1]))
		}
	}
	for _, m := range bareProfileRe.FindAllStringSubmatch(query, -1) {
		if _, ok := seen[m[1]]; !ok {
			seen[m[1]] = struct{}{}
			out = append(out, domain.ProfileID(m[1]))
		}
	}
	return out
}

func extractFloatIDs(query string, profileIDs []domain.ProfileID) []domain.FloatID {
	consumed := map[string]struct{}{}
	for _, p := range profileIDs {
		consumed[string(p)] = struct{}{}
	}

	seen := map[string]struct{}{}
	var out []domain.FloatID
	for _, m := range floatIDRe.FindAllStringSubmatch(query, -1) {
		if _, ok := seen[m[1]]; !ok {
			seen[m[1]] = struct{}{}
			out = append(out, domain.FloatID(m[1]))
		}
	}
	// Standalone 7-digit runs not already claimed by a profile_id and not
	// already matched as a float_id default to float_id.
	for _, m := range bareDigitRe.FindAllStringSubmatch(query, -1) {
		if _, ok := consumed[m[1]]; ok {
			continue
		}
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, domain.FloatID(m[1]))
	}
	return out
}

func (e *Extractor) extractParameters(query string) []string {
	lower := strings.ToLower(query)
	seen := map[string]struct{}{}
	var out []string
	for _, p := range e.cat.Parameters() {
		for _, alias := range p.Aliases {
			if strings.Contains(lower, alias) {
				if _, ok := seen[p.DisplayName]; !ok {
					seen[p.DisplayName] = struct{}{}
					out = append(out, p.DisplayName)
				}
				break
			}
		}
	}
	return out
}

func (e *Extractor) extractRegions(query string) []string {
	lower := strings.ToLower(query)
	var out []string
	for _, r := range e.cat.Regions() {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				out = append(out, r.Name)
				break
			}
		}
	}
	return out
}

func extractCoordinates(query string) *domain.LatLon {
	m := coordDegRe.FindStringSubmatch(query)
	if m == nil {
		return nil
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lon, err2 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	if strings.EqualFold(m[2], "s") {
		lat = -lat
	}
	if strings.EqualFold(m[4], "w") {
		lon = -lon
	}
	return &domain.LatLon{Lat: lat, Lon: lon}
}

func extractDates(query string) []string {
	var out []string
	add := func(s string) {
		for _, existing := range out {
			if existing == s {
				return
			}
		}
		out = append(out, s)
	}
	for _, m := range isoDateRe.FindAllString(query, -1) {
		add(m)
	}
	for _, m := range yearMonthRe.FindAllString(query, -1) {
		add(m)
	}
	for _, m := range yearRe.FindAllString(query, -1) {
		add(m)
	}
	for _, m := range lastNRe.FindAllString(query, -1) {
		add(m)
	}
	for _, m := range betweenRe.FindAllString(query, -1) {
		add(m)
	}
	for _, m := range sinceRe.FindAllString(query, -1) {
		add(m)
	}
	return out
}

func extractComparisons(query string) []domain.NumericComparison {
	var out []domain.NumericComparison
	for _, m := range comparatorRe.FindAllStringSubmatch(query, -1) {
		val, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		var cmp domain.Comparator
		switch m[1] {
		case ">":
			cmp = domain.ComparatorGt
		case ">=":
			cmp = domain.ComparatorGte
		case "<":
			cmp = domain.ComparatorLt
		case "<=":
			cmp = domain.ComparatorLte
		case "=":
			cmp = domain.ComparatorEq
		default:
			continue
		}
		out = append(out, domain.NumericComparison{Operator: cmp, Value: val})
	}
	return out
}

// Years extracts distinct 4-digit years found in a query, restricted to
// the 2018-2025 window recognized by the year_count_direct shape.
func Years(query string) []int {
	var out []int
	seen := map[int]struct{}{}
	for _, m := range regexp.MustCompile(`\b(20[12]\d)\b`).FindAllString(query, -1) {
		y, err := strconv.Atoi(m)
		if err != nil || y < 2018 || y > 2025 {
			continue
		}
		if _, ok := seen[y]; !ok {
			seen[y] = struct{}{}
			out = append(out, y)
		}
	}
	return out
}
