package agent

import (
	"regexp"
	"strings"
)

// dangerousOperationKeywords flag mutation intent in user messages.
var dangerousOperationKeywords = []string{
	"delete", "remove", "update", "modify", "change", "edit",
	"drop", "truncate", "alter", "clear", "wipe", "erase",
}

// dataNouns are the nouns that, combined with a dangerous verb, make a
// message a data-mutation request rather than casual phrasing.
var dataNouns = []string{"job", "role", "data", "record", "entry", "database", "table"}

// dangerousSQLKeywords are statement types never allowed in a derived query.
var dangerousSQLKeywords = []string{
	"DELETE", "UPDATE", "INSERT", "DROP", "TRUNCATE", "ALTER",
	"CREATE", "GRANT", "REVOKE", "EXEC", "EXECUTE", "MERGE",
}

var (
	sqlKeywordPatterns = compileSQLKeywords()

	// Injection patterns: statement chaining, comments, UNION, EXEC.
	sqlInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i);\s*(DELETE|UPDATE|DROP|INSERT)`),
		regexp.MustCompile(`--`),
		regexp.MustCompile(`(?s)/\*.*\*/`),
		regexp.MustCompile(`(?i)UNION.*SELECT`),
		regexp.MustCompile(`(?i)EXEC\s*\(`),
	}
)

func compileSQLKeywords() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(dangerousSQLKeywords))
	for _, kw := range dangerousSQLKeywords {
		patterns = append(patterns, regexp.MustCompile(`\b`+kw+`\b`))
	}
	return patterns
}

// IsDangerous reports whether the message contains mutation-intent keywords.
// Case-insensitive substring match.
func IsDangerous(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range dangerousOperationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// mentionsDataNoun reports whether the message references a data entity.
// A dangerous verb alone does not block; it must target data.
func mentionsDataNoun(message string) bool {
	lower := strings.ToLower(message)
	for _, noun := range dataNouns {
		if strings.Contains(lower, noun) {
			return true
		}
	}
	return false
}

// ValidateReadOnlyQuery checks that a derived query string is a plain
// read-only SELECT with no mutation keywords or injection patterns.
// Returns ok and a reason when rejected.
func ValidateReadOnlyQuery(query string) (bool, string) {
	upper := strings.ToUpper(strings.TrimSpace(query))

	if !strings.HasPrefix(upper, "SELECT") {
		return false, "only SELECT queries are allowed"
	}

	for _, p := range sqlKeywordPatterns {
		if p.MatchString(upper) {
			return false, "query contains a data modification operation"
		}
	}

	for _, p := range sqlInjectionPatterns {
		if p.MatchString(upper) {
			return false, "query contains a potentially dangerous pattern"
		}
	}

	return true, ""
}
