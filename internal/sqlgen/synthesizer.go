// Package sqlgen implements the SQL Synthesizer: a closed set of
// pattern-guarded deterministic "direct shape" templates, with an LLM
// fallback constrained by schema and validated before execution. Grounded
// on original_source's intelligent_sql_generator.py in full.
package sqlgen

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/argofloatchat/queryresolver/internal/catalog"
	"github.com/argofloatchat/queryresolver/internal/domain"
	"github.com/argofloatchat/queryresolver/internal/entities"
	"github.com/argofloatchat/queryresolver/internal/llmgateway"
)

// GenerationMethod identifies which direct shape (or the LLM fallback)
// produced a statement.
type GenerationMethod string

const (
	MethodOperatingDuration GenerationMethod = "operating_duration_direct"
	MethodYearCount         GenerationMethod = "year_count_direct"
	MethodNearestFloats     GenerationMethod = "nearest_floats_direct"
	MethodYearComparison    GenerationMethod = "year_comparison_direct"
	MethodGeographicDirect  GenerationMethod = "geographic_direct"
	MethodIntelligentLLM    GenerationMethod = "intelligent_llm"
)

// Output is the synthesizer's result for one query.
type Output struct {
	SQLText          string
	CompanionCountSQL string
	Explanation      string
	EstimatedResults int
	ParametersUsed   []string
	GenerationMethod GenerationMethod
	Error            string
}

// Synthesizer generates and validates SQL for a query.
type Synthesizer struct {
	cat     *catalog.Catalog
	gateway *llmgateway.Gateway
	log     *zap.Logger
}

// New builds a Synthesizer.
func New(cat *catalog.Catalog, gateway *llmgateway.Gateway, log *zap.Logger) *Synthesizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Synthesizer{cat: cat, gateway: gateway, log: log}
}

var (
	operatingDurationRe = regexp.MustCompile(`(?i)(operating for|been operating|more than|less than)\s+(\d+)\s+years?`)
	howManyRe            = regexp.MustCompile(`(?i)how many|number of profiles`)
	nearestRe            = regexp.MustCompile(`(?i)\b(nearest|closest|near)\b`)
	compareWordsRe       = regexp.MustCompile(`(?i)\b(compare|vs\.?|versus)\b`)
)

// Generate implements §4.3's priority-ordered direct-shape dispatch,
// falling through to the LLM otherwise.
func (s *Synthesizer) Generate(ctx context.Context, query string, ents domain.ExtractedEntities) Output {
	if m := operatingDurationRe.FindStringSubmatch(query); m != nil {
		return s.operatingDurationDirect(query, m)
	}
	years := entities.Years(query)
	if howManyRe.MatchString(query) && len(years) > 0 {
		return s.yearCountDirect(years)
	}
	if nearestRe.MatchString(query) && ents.Coordinates != nil {
		return s.nearestFloatsDirect(*ents.Coordinates)
	}
	if compareWordsRe.MatchString(query) && len(years) >= 2 {
		return s.yearComparisonDirect(query, years)
	}
	if ents.Coordinates != nil {
		return s.geographicDirect(*ents.Coordinates)
	}
	return s.intelligentLLM(ctx, query, ents)
}

func (s *Synthesizer) operatingDurationDirect(query string, m []string) Output {
	years, _ := strconv.Atoi(m[2])
	seconds := float64(years) * 365.25 * 86400
	cmp := ">="
	if strings.Contains(strings.ToLower(m[1]), "less than") {
		cmp = "<="
	}
	sqlText := fmt.Sprintf(`SELECT float_id, MIN(profile_date) as first_profile, MAX(profile_date) as last_profile
FROM argo_profiles
GROUP BY float_id
HAVING EXTRACT(EPOCH FROM AGE(MAX(profile_date), MIN(profile_date))) %s %f
ORDER BY float_id`, cmp, seconds)
	return finish(Output{
		SQLText:          sqlText,
		Explanation:      "floats whose operating duration compares against the requested year threshold",
		EstimatedResults: 25,
		GenerationMethod: MethodOperatingDuration,
	})
}

func (s *Synthesizer) yearCountDirect(years []int) Output {
	yearList := make([]string, len(years))
	for i, y := range years {
		yearList[i] = strconv.Itoa(y)
	}
	sqlText := fmt.Sprintf(`SELECT EXTRACT(YEAR FROM profile_date) as year, COUNT(*) as count
FROM argo_profiles
WHERE profile_date IS NOT NULL AND EXTRACT(YEAR FROM profile_date) IN (%s)
GROUP BY EXTRACT(YEAR FROM profile_date)
ORDER BY year`, strings.Join(yearList, ", "))
	return finish(Output{
		SQLText:          sqlText,
		Explanation:      "profile counts grouped by the requested year(s)",
		EstimatedResults: len(years),
		GenerationMethod: MethodYearCount,
	})
}

const (
	earthRadiusKM        = 6371.0
	nearestFloatsMaxKM   = 500.0
	nearestFloatsLimit   = 10
)

func (s *Synthesizer) nearestFloatsDirect(coord domain.LatLon) Output {
	sqlText := fmt.Sprintf(`SELECT p.float_id, p.profile_id, p.latitude, p.longitude, p.profile_date,
  %f * acos(
    cos(radians(%f)) * cos(radians(p.latitude)) * cos(radians(p.longitude) - radians(%f))
    + sin(radians(%f)) * sin(radians(p.latitude))
  ) as distance_km
FROM argo_profiles p
WHERE %f * acos(
    cos(radians(%f)) * cos(radians(p.latitude)) * cos(radians(p.longitude) - radians(%f))
    + sin(radians(%f)) * sin(radians(p.latitude))
  ) <= %f
GROUP BY p.float_id, p.profile_id, p.latitude, p.longitude, p.profile_date
ORDER BY distance_km ASC
LIMIT %d`,
		earthRadiusKM, coord.Lat, coord.Lon, coord.Lat,
		earthRadiusKM, coord.Lat, coord.Lon, coord.Lat,
		nearestFloatsMaxKM, nearestFloatsLimit)
	return finish(Output{
		SQLText:          sqlText,
		Explanation:      "nearest floats by great-circle distance",
		EstimatedResults: nearestFloatsLimit,
		GenerationMethod: MethodNearestFloats,
	})
}

func (s *Synthesizer) yearComparisonDirect(query string, years []int) Output {
	y1, y2 := years[0], years[1]
	equatorial := strings.Contains(strings.ToLower(query), "equator")
	eqFilter := ""
	if equatorial {
		eqFilter = " AND latitude BETWEEN -5 AND 5"
	}
	block := func(y int) string {
		return fmt.Sprintf(`SELECT EXTRACT(YEAR FROM profile_date) as year, float_id, profile_id,
  latitude, longitude, temperature[1] as surface_temp, salinity[1] as surface_sal
FROM argo_profiles
WHERE EXTRACT(YEAR FROM profile_date) = %d%s`, y, eqFilter)
	}
	sqlText := block(y2) + "\nUNION ALL\n" + block(y1) + "\nORDER BY year"
	return finish(Output{
		SQLText:          sqlText,
		Explanation:      "surface measurements for the two compared years",
		EstimatedResults: 50,
		GenerationMethod: MethodYearComparison,
	})
}

func (s *Synthesizer) geographicDirect(coord domain.LatLon) Output {
	sqlText := fmt.Sprintf(`SELECT profile_id, float_id, latitude, longitude, profile_date
FROM argo_profiles
WHERE latitude BETWEEN %f AND %f AND longitude BETWEEN %f AND %f
ORDER BY profile_date DESC
LIMIT 100`, coord.Lat-1, coord.Lat+1, coord.Lon-1, coord.Lon+1)
	return finish(Output{
		SQLText:          sqlText,
		Explanation:      "profiles within a 1-degree box around the requested point",
		EstimatedResults: 100,
		GenerationMethod: MethodGeographicDirect,
	})
}

func (s *Synthesizer) intelligentLLM(ctx context.Context, query string, ents domain.ExtractedEntities) Output {
	if s.gateway == nil {
		return finish(Output{
			SQLText:          fallbackSQL(ents),
			Explanation:      "no LLM backend configured; safe fallback statement",
			GenerationMethod: MethodIntelligentLLM,
			Error:            "llm gateway unavailable",
		})
	}

	prompt := s.buildLLMPrompt(query, ents)
	raw, err := s.gateway.Complete(ctx, llmgateway.Request{
		Messages: []llmgateway.Message{
			{Role: llmgateway.RoleSystem, Content: prompt},
			{Role: llmgateway.RoleUser, Content: query},
		},
		Temperature: 0,
		MaxTokens:   400,
	})
	if err != nil {
		s.log.Warn("llm sql generation failed, using safe fallback", zap.Error(err))
		return finish(Output{
			SQLText:          fallbackSQL(ents),
			Explanation:      "LLM generation failed; safe fallback statement",
			GenerationMethod: MethodIntelligentLLM,
			Error:            err.Error(),
		})
	}

	cleaned := cleanSQLResponse(raw)
	cleaned = fixArrayAggregation(cleaned)
	cleaned = fixTableSelection(cleaned, query)

	out := Output{
		SQLText:          cleaned,
		Explanation:      "LLM-generated SQL, schema-constrained",
		EstimatedResults: 25,
		GenerationMethod: MethodIntelligentLLM,
		ParametersUsed:   ents.Parameters,
	}

	if verr := Validate(out.SQLText); verr != nil {
		s.log.Warn("llm sql failed validation, using safe fallback", zap.Error(verr))
		out.SQLText = fallbackSQL(ents)
		out.Error = verr.Error()
	}
	return finish(out)
}

func (s *Synthesizer) buildLLMPrompt(query string, ents domain.ExtractedEntities) string {
	var b strings.Builder
	b.WriteString("You generate a single read-only PostgreSQL SELECT statement for the following schema:\n\n")
	b.WriteString(s.cat.SchemaText())
	b.WriteString("\n\nRules: output SQL only, no commentary, no markdown fences. ")
	b.WriteString("Bare aggregates (AVG/SUM/MIN/MAX) over array columns are not allowed; use col[1] for the surface sample. ")
	b.WriteString("PROFILE/FLOAT ID HANDLING: a profile_id is the float_id prefix plus a cycle suffix, so filter it with " +
		"profile_id LIKE '<id>%' (prefix match), never profile_id = '<id>'. A float_id is filtered with an exact float_id = '<id>'. ")
	b.WriteString("Example: \"average surface temperature\" -> SELECT AVG(temperature[1]) FROM argo_profiles;\n")
	b.WriteString("Example: \"floats in the Arabian Sea\" -> SELECT float_id, latitude, longitude FROM argo_floats WHERE latitude BETWEEN 8 AND 25 AND longitude BETWEEN 50 AND 78;\n")
	b.WriteString("Example: \"Show profile number 1902681 trajectories\" -> SELECT profile_id, float_id, latitude, longitude, profile_date FROM argo_profiles WHERE profile_id LIKE '1902681%' ORDER BY profile_date;\n")

	if len(ents.ProfileIDs) > 0 {
		ids := make([]string, len(ents.ProfileIDs))
		for i, id := range ents.ProfileIDs {
			ids[i] = string(id)
		}
		b.WriteString(fmt.Sprintf("This query references profile ID(s) %s; filter with profile_id LIKE '<id>%%' for each.\n", strings.Join(ids, ", ")))
	}
	if len(ents.FloatIDs) > 0 {
		ids := make([]string, len(ents.FloatIDs))
		for i, id := range ents.FloatIDs {
			ids[i] = string(id)
		}
		b.WriteString(fmt.Sprintf("This query references float ID(s) %s; filter with float_id = '<id>' for each.\n", strings.Join(ids, ", ")))
	}
	return b.String()
}

func fallbackSQL(ents domain.ExtractedEntities) string {
	if len(ents.Regions) > 0 || ents.Coordinates != nil {
		return "SELECT COUNT(*) FROM argo_profiles WHERE latitude IS NOT NULL AND longitude IS NOT NULL LIMIT 10"
	}
	return "SELECT COUNT(*) FROM argo_profiles LIMIT 10"
}

// finish applies §4.3's result-shaping pass: adds LIMIT 25 to non-COUNT,
// non-direct SELECTs missing one, and derives the companion COUNT query.
func finish(out Output) Output {
	if out.GenerationMethod == MethodIntelligentLLM && !strings.Contains(strings.ToUpper(out.SQLText), "COUNT(") {
		if !regexp.MustCompile(`(?i)\bLIMIT\s+\d+`).MatchString(out.SQLText) {
			out.SQLText = strings.TrimRight(out.SQLText, "; \n") + "\nLIMIT 25"
		}
	}
	out.CompanionCountSQL = companionCountSQL(out.SQLText)
	return out
}

var (
	orderByRe = regexp.MustCompile(`(?is)\s*ORDER BY.*?(?:LIMIT\s+\d+)?\s*$`)
	limitRe   = regexp.MustCompile(`(?i)\s*LIMIT\s+\d+\s*$`)
	selectRe  = regexp.MustCompile(`(?is)^\s*SELECT\s+.*?\s+FROM`)
	// countProjectionRe ends the projection at the FROM that names a table,
	// so a FROM inside the select list (EXTRACT(YEAR FROM ...)) is skipped.
	countProjectionRe = regexp.MustCompile(`(?is)^\s*SELECT\s+.*?\s+FROM(\s+argo_(?:profiles|floats)\b)`)
)

// companionCountSQL derives a COUNT(*) query from the primary statement by
// projecting COUNT(*), dropping ORDER BY/LIMIT, and preserving WHERE.
func companionCountSQL(sqlText string) string {
	stripped := limitRe.ReplaceAllString(sqlText, "")
	stripped = orderByRe.ReplaceAllString(stripped, "")
	if !countProjectionRe.MatchString(stripped) {
		return ""
	}
	return countProjectionRe.ReplaceAllString(stripped, "SELECT COUNT(*) FROM$1")
}

func cleanSQLResponse(raw string) string {
	text := regexp.MustCompile("(?s)```sql|```").ReplaceAllString(raw, "")
	lines := strings.Split(text, "\n")
	var kept []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "--") || t == "" {
			continue
		}
		kept = append(kept, l)
	}
	joined := strings.Join(kept, " ")
	if idx := strings.Index(joined, ";"); idx >= 0 {
		joined = joined[:idx]
	}
	return strings.TrimSpace(joined)
}

var bareAggArrayRe = func() *regexp.Regexp {
	cols := strings.Join(catalog.ArrayColumns, "|")
	return regexp.MustCompile(`(?i)\b(AVG|SUM|MIN|MAX)\s*\(\s*(` + cols + `)\s*\)`)
}()

// fixArrayAggregation rewrites AVG(temperature) -> AVG(temperature[1]) etc.
func fixArrayAggregation(sqlText string) string {
	return bareAggArrayRe.ReplaceAllString(sqlText, "$1($2[1])")
}

var locationIntentRe = regexp.MustCompile(`(?i)\b(location|coordinates?|trajector(y|ies))\b`)
var fromFloatsRe = regexp.MustCompile(`(?i)\bFROM\s+argo_floats\b`)

// fixTableSelection rewrites a location/trajectory query that the LLM
// incorrectly targeted at argo_floats to use argo_profiles instead.
func fixTableSelection(sqlText, query string) string {
	if !locationIntentRe.MatchString(query) {
		return sqlText
	}
	if !fromFloatsRe.MatchString(sqlText) {
		return sqlText
	}
	out := fromFloatsRe.ReplaceAllString(sqlText, "FROM argo_profiles")
	if m := selectRe.FindString(out); m != "" && !strings.Contains(strings.ToLower(m), "profile_id") {
		out = strings.Replace(out, "SELECT ", "SELECT profile_id, profile_date, ", 1)
	}
	return out
}
