package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hirelane/hirelane/internal/domain"
)

// JobFieldNames is the full create-job slot schema.
var JobFieldNames = []string{"title", "description", "requirements", "location", "salary"}

// absentSentinels are values the model emits for missing fields. They are
// canonicalized to "field absent" before any missing-field check.
var absentSentinels = map[string]struct{}{
	"":            {},
	"null":        {},
	"none":        {},
	"tbd":         {},
	"n/a":         {},
	"na":          {},
	"unspecified": {},
}

// Extractor maps free text to partial field maps. It never returns an
// error: total extraction failure yields an empty map and callers fall back
// to heuristics or ask the user directly.
type Extractor struct {
	completer Completer
}

// NewExtractor creates an Extractor. The completer may be nil, in which case
// only pattern heuristics apply.
func NewExtractor(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

// cleanValue trims a raw extracted value and collapses absence sentinels to
// the empty string.
func cleanValue(v string) string {
	v = strings.TrimSpace(v)
	if _, absent := absentSentinels[strings.ToLower(v)]; absent {
		return ""
	}
	return v
}

// parseLooseJSON finds the first "{" and the last "}" in a completion and
// attempts to parse the enclosed object, discarding it on failure.
func parseLooseJSON(blob string) map[string]string {
	out := make(map[string]string)
	if blob == "" {
		return out
	}

	tryParse := func(s string) bool {
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return false
		}
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				out[strings.ToLower(k)] = val
			case float64:
				out[strings.ToLower(k)] = strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", val), "0"), ".")
			case bool:
				out[strings.ToLower(k)] = fmt.Sprintf("%t", val)
			}
		}
		return true
	}

	if tryParse(blob) {
		return out
	}

	start := strings.Index(blob, "{")
	end := strings.LastIndex(blob, "}")
	if start != -1 && end > start {
		tryParse(blob[start : end+1])
	}
	return out
}

// Extract maps text to a partial field map for the given schema using the
// completion service. Absent or sentinel-valued fields are omitted.
func (e *Extractor) Extract(ctx context.Context, text string, prompt string, schema []string) map[string]string {
	fields := make(map[string]string)
	if e.completer == nil {
		return fields
	}

	completion, err := e.completer.Complete(ctx, fmt.Sprintf(prompt, text))
	if err != nil {
		return fields
	}

	raw := parseLooseJSON(completion)
	for _, name := range schema {
		if v := cleanValue(raw[name]); v != "" {
			fields[name] = v
		}
	}
	return fields
}

// ExtractJobFields extracts create-job slots from a message, combining the
// completion service with pattern heuristics.
func (e *Extractor) ExtractJobFields(ctx context.Context, message string) domain.PendingJob {
	fields := e.Extract(ctx, message, extractJobDetailsPrompt, JobFieldNames)
	job := domain.PendingJob{
		Title:        fields["title"],
		Description:  fields["description"],
		Requirements: fields["requirements"],
		Location:     fields["location"],
		Salary:       fields["salary"],
	}
	augmentJobHeuristics(&job, message)
	return job
}

// ExtractFilters extracts job search filters from a message.
func (e *Extractor) ExtractFilters(ctx context.Context, message string) domain.JobFilter {
	fields := e.Extract(ctx, message, extractFiltersPrompt, []string{"keywords", "location", "salary"})
	return domain.JobFilter{
		Keywords: fields["keywords"],
		Location: fields["location"],
		Salary:   fields["salary"],
	}
}

// Heuristic field patterns, used when the completion service fails or
// misses a field the message clearly states.
var (
	requirementsPattern = regexp.MustCompile(`(?i)(?:need|requires?|must have|looking for)\s+([^.\n]+)`)
	locationPattern     = regexp.MustCompile(`(?i)\b(?:based in|located in|in)\s+([a-z][a-z\s]{0,40})`)
	salaryPattern       = regexp.MustCompile(`([£$€])\s?(\d{2,3})(?:k|,?\d{3})?`)
	titlePattern        = regexp.MustCompile(`(?i)(?:for|create)\s+(?:a\s+)?([A-Za-z][\w\s\-/]+?)(?:\s+role|\s+job|\s+position|[,.])`)
)

func augmentJobHeuristics(job *domain.PendingJob, message string) {
	if job.Requirements == "" {
		if m := requirementsPattern.FindStringSubmatch(message); m != nil {
			job.Requirements = strings.TrimRight(strings.TrimSpace(m[1]), ".,")
		}
	}
	if job.Location == "" {
		if m := locationPattern.FindStringSubmatch(message); m != nil {
			if loc := trimLocationCapture(m[1]); loc != "" {
				job.Location = titleCase(loc)
			}
		}
	}
	if job.Salary == "" {
		if m := salaryPattern.FindStringSubmatch(message); m != nil {
			currency, amount := m[1], m[2]
			suffix := ""
			if len(amount) <= 3 {
				suffix = "k"
			}
			job.Salary = currency + amount + suffix
		}
	}
	if job.Title == "" {
		if m := titlePattern.FindStringSubmatch(message); m != nil {
			job.Title = titleCase(strings.TrimSpace(m[1]))
		}
	}
}

// locationStopwords end a place-name capture: "in london for 50k" must
// yield "london", not "london for".
var locationStopwords = map[string]struct{}{
	"for": {}, "with": {}, "and": {}, "we": {}, "the": {}, "a": {}, "an": {},
	"that": {}, "who": {}, "pays": {}, "paying": {}, "salary": {},
	"need": {}, "needs": {}, "require": {}, "requires": {}, "at": {}, "or": {},
}

// trimLocationCapture cuts the captured text at the first stopword and caps
// the place name at three words.
func trimLocationCapture(captured string) string {
	words := strings.Fields(captured)
	var kept []string
	for _, w := range words {
		if _, stop := locationStopwords[strings.ToLower(w)]; stop {
			break
		}
		kept = append(kept, w)
		if len(kept) == 3 {
			break
		}
	}
	return strings.Join(kept, " ")
}

// titleCase capitalizes the first letter of each space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
