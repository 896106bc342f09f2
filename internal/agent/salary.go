package agent

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	salarySplitPattern = regexp.MustCompile(`\s*-\s*|\s+to\s+|\s+`)
	firstNumberPattern = regexp.MustCompile(`\d+`)
	kSuffixPattern     = regexp.MustCompile(`(?i)k\b`)
	mSuffixPattern     = regexp.MustCompile(`(?i)m\b`)
)

// salaryNumbers extracts the numeric values from a salary string, applying
// k/m suffix multipliers. "$80,000–$120,000" yields [80000, 120000].
func salaryNumbers(salary string) []int {
	clean := strings.NewReplacer("$", "", ",", "", "–", "-", "—", "-").Replace(salary)
	parts := salarySplitPattern.Split(clean, -1)

	var nums []int
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m := firstNumberPattern.FindString(part)
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if kSuffixPattern.MatchString(part) {
			n *= 1000
		} else if mSuffixPattern.MatchString(part) {
			n *= 1000000
		}
		if n > 0 {
			nums = append(nums, n)
		}
	}
	return nums
}

// filterNumber extracts the threshold from a salary filter phrase, treating
// small "k"-suffixed values as thousands.
func filterNumber(filter string) (int, bool) {
	m := firstNumberPattern.FindString(filter)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	if strings.Contains(filter, "k") && n < 1000 {
		n *= 1000
	}
	return n, true
}

// salaryMatches reports whether a job's salary string satisfies a natural-
// language salary filter ("over 100k", "under 90k", "120k").
func salaryMatches(jobSalary, filter string) bool {
	jobSalary = strings.ToLower(strings.TrimSpace(jobSalary))
	filter = strings.ToLower(strings.TrimSpace(filter))

	nums := salaryNumbers(jobSalary)
	if len(nums) == 0 {
		// No numbers to compare; fall back to text matching.
		return strings.Contains(jobSalary, filter)
	}

	anyAtLeast := func(threshold int) bool {
		for _, n := range nums {
			if n >= threshold {
				return true
			}
		}
		return false
	}
	anyAtMost := func(threshold int) bool {
		for _, n := range nums {
			if n <= threshold {
				return true
			}
		}
		return false
	}

	switch {
	case strings.Contains(filter, "over") || strings.Contains(filter, "above") ||
		strings.Contains(filter, "more than") || strings.Contains(filter, "greater than"):
		if threshold, ok := filterNumber(filter); ok {
			return anyAtLeast(threshold)
		}
	case strings.Contains(filter, "under") || strings.Contains(filter, "below") ||
		strings.Contains(filter, "less than"):
		if threshold, ok := filterNumber(filter); ok {
			return anyAtMost(threshold)
		}
	default:
		// A bare amount ("100k", "120000") means at-or-above.
		if threshold, ok := filterNumber(filter); ok {
			return anyAtLeast(threshold)
		}
	}

	return strings.Contains(jobSalary, filter)
}
