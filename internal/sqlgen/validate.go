package sqlgen

import (
	"fmt"
	"regexp"
	"strings"
)

var dangerousKeywords = []string{"drop", "delete", "insert", "update", "alter", "create"}

var wordRe = func(kw string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + kw + `\b`)
}

var validTables = []string{"argo_profiles", "argo_floats"}

// Validate checks a candidate SQL statement against the §4.3 safety rules.
// It returns nil when the statement is safe to execute.
func Validate(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return fmt.Errorf("empty statement")
	}
	if !regexp.MustCompile(`(?i)^SELECT\b`).MatchString(trimmed) {
		return fmt.Errorf("statement does not begin with SELECT")
	}
	if !regexp.MustCompile(`(?i)\bFROM\b`).MatchString(trimmed) {
		return fmt.Errorf("statement has no FROM clause")
	}

	referencesValidTable := false
	for _, t := range validTables {
		if wordRe(t).MatchString(trimmed) {
			referencesValidTable = true
			break
		}
	}
	if !referencesValidTable {
		return fmt.Errorf("statement references no recognized table")
	}

	for _, kw := range dangerousKeywords {
		if wordRe(kw).MatchString(trimmed) {
			return fmt.Errorf("statement contains disallowed keyword %q", kw)
		}
	}

	if bareAggArrayRe.MatchString(trimmed) {
		return fmt.Errorf("statement contains a bare aggregate over an array column")
	}

	return nil
}
