package domain

import "time"

// AssertionResult is the output of a single expectation check.
type AssertionResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// CaseResult represents the result of classifying a single case.
type CaseResult struct {
	Name    string `json:"name"`
	Request string `json:"request"`

	Classification Classification    `json:"classification"`
	Assertions     []AssertionResult `json:"assertions"`

	// Violations are contract problems found by ValidateClassification.
	Violations []string `json:"violations,omitempty"`
	// Error is set when the request could not be prepared (e.g. a missing var).
	Error string `json:"error,omitempty"`
}

// Failed reports whether any check on this case did not pass.
func (r CaseResult) Failed() bool {
	if r.Error != "" || len(r.Violations) > 0 {
		return true
	}
	for _, a := range r.Assertions {
		if !a.Passed {
			return true
		}
	}
	return false
}

// SuiteRun is the outcome of running every case of a suite.
type SuiteRun struct {
	SuiteName string `json:"suite_name"`
	SuitePath string `json:"suite_path"`
	Rulebook  string `json:"rulebook"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	Results []CaseResult `json:"results"`
}

// Failures counts failed cases.
func (r SuiteRun) Failures() int {
	n := 0
	for _, c := range r.Results {
		if c.Failed() {
			n++
		}
	}
	return n
}
