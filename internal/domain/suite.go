package domain

// JSONPathAssertion defines a JSONPath-based check against the JSON form of a classification.
// Exists, Eq, Contains and Matches are independent; every one that is set is evaluated.
// Exists=false asserts the value is absent or null.
type JSONPathAssertion struct {
	Exists   *bool
	Eq       *string
	Contains *string
	Matches  *string
}

// Expectations describe what a case expects the classifier to return.
type Expectations struct {
	Tool            *Tool
	Confidence      *Confidence
	AlternativeTool *Tool

	// JSONPath contains assertions keyed by JSONPath expression.
	JSONPath map[string]JSONPathAssertion
}

// Case is a single request under test.
type Case struct {
	Name    string
	Request string
	Expect  Expectations
}

// Suite groups cases under one logical unit (Git-friendly).
type Suite struct {
	Name string

	// Vars are substituted into {{var}} placeholders of case requests.
	Vars Vars

	Cases []Case
}

// SuiteRef is a lightweight reference to a suite file on disk.
type SuiteRef struct {
	Name string
	Path string
}
