package agent

import (
	"testing"
)

func TestIsDangerous(t *testing.T) {
	t.Parallel()

	for _, msg := range []string{
		"delete all the jobs",
		"please UPDATE the salary record",
		"wipe the database",
	} {
		if !IsDangerous(msg) {
			t.Errorf("expected %q to be dangerous", msg)
		}
	}
	for _, msg := range []string{
		"create a job for a nurse",
		"show me the applicants",
	} {
		if IsDangerous(msg) {
			t.Errorf("did not expect %q to be dangerous", msg)
		}
	}
}

func TestMentionsDataNoun(t *testing.T) {
	t.Parallel()

	if !mentionsDataNoun("remove the job entry") {
		t.Fatal("expected data noun to be detected")
	}
	if mentionsDataNoun("remove my coat") {
		t.Fatal("did not expect a data noun")
	}
}

func TestValidateReadOnlyQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		ok    bool
	}{
		{"SELECT COUNT(*) FROM jobs", true},
		{"  select title from jobs limit 5", true},
		{"DELETE FROM jobs", false},
		{"SELECT * FROM jobs; DELETE FROM jobs", false},
		{"SELECT * FROM jobs -- comment", false},
		{"SELECT * FROM jobs UNION SELECT * FROM users", false},
		{"SELECT 1 WHERE EXEC(1)", false},
		{"UPDATE jobs SET status = 'closed'", false},
	}
	for _, tt := range tests {
		ok, reason := ValidateReadOnlyQuery(tt.query)
		if ok != tt.ok {
			t.Errorf("ValidateReadOnlyQuery(%q) = %v (%s), want %v", tt.query, ok, reason, tt.ok)
		}
	}
}

func TestCannedQueriesPassValidation(t *testing.T) {
	t.Parallel()

	for name, sql := range safeQueries {
		if ok, reason := ValidateReadOnlyQuery(sql); !ok {
			t.Errorf("canned query %q rejected: %s", name, reason)
		}
	}
}
