package agent

import (
	"reflect"
	"testing"
)

func TestSalaryNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []int
	}{
		{"$80,000–$120,000", []int{80000, 120000}},
		{"80k-100k", []int{80000, 100000}},
		{"£45k", []int{45000}},
		{"$1m plus equity", []int{1000000}},
		{"90000 to 110000", []int{90000, 110000}},
		{"competitive", nil},
	}
	for _, tt := range tests {
		if got := salaryNumbers(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("salaryNumbers(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSalaryMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		salary string
		filter string
		want   bool
	}{
		{"$80,000–$120,000", "over 100k", true},
		{"$80,000", "over 100k", false},
		{"$80,000–$120,000", "under 90k", true},
		{"$130,000", "under 90k", false},
		{"100k", "more than 50k", true},
		{"45k", "above 60000", false},
		{"$120,000", "120k", true},
		{"$90,000", "120k", false},
		{"competitive", "competitive", true},
		{"competitive", "over 100k", false},
	}
	for _, tt := range tests {
		if got := salaryMatches(tt.salary, tt.filter); got != tt.want {
			t.Errorf("salaryMatches(%q, %q) = %v, want %v", tt.salary, tt.filter, got, tt.want)
		}
	}
}
