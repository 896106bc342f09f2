package agent

import (
	"regexp"
	"strings"
)

// synonymGroups maps canonical recruiter terms to their variants. Variants
// are replaced with word-boundary matching so partial words are never
// corrupted ("composition" keeps its "position").
var synonymGroups = map[string][]string{
	"role":      {"position", "opening", "vacancy"},
	"applicant": {"candidate", "person"},
}

var synonymPatterns = compileSynonyms()

type synonymPattern struct {
	re        *regexp.Regexp
	canonical string
}

func compileSynonyms() []synonymPattern {
	var patterns []synonymPattern
	for canonical, variants := range synonymGroups {
		for _, v := range variants {
			patterns = append(patterns, synonymPattern{
				re:        regexp.MustCompile(`\b` + regexp.QuoteMeta(v) + `\b`),
				canonical: canonical,
			})
		}
	}
	return patterns
}

// Normalize lowercases the message and replaces synonym variants with their
// canonical terms. Replacement is pure text substitution and is
// order-independent across synonym groups.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	for _, p := range synonymPatterns {
		lower = p.re.ReplaceAllString(lower, p.canonical)
	}
	return lower
}
