package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := &OpError{
		Op:   "rulebook.load",
		Kind: KindInvalidConfig,
		Path: "rulebook.yaml",
		Err:  root,
	}

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match cause")
	}
	if !IsKind(err, KindInvalidConfig) {
		t.Fatalf("expected IsKind to match")
	}
	if !strings.Contains(err.Error(), "path=rulebook.yaml") {
		t.Fatalf("expected path in message, got %q", err.Error())
	}
}

func TestIsKindFalseForPlainError(t *testing.T) {
	if IsKind(errors.New("x"), KindNotFound) {
		t.Fatalf("expected plain error not to match a kind")
	}
}

func TestSuiteRunFailures(t *testing.T) {
	run := SuiteRun{
		Results: []CaseResult{
			{Assertions: []AssertionResult{{Passed: true}}},
			{Assertions: []AssertionResult{{Passed: false}}},
			{Violations: []string{"reasoning: must not be empty"}},
			{Error: "missing variable"},
		},
	}
	if got := run.Failures(); got != 3 {
		t.Fatalf("expected 3 failures, got %d", got)
	}
}
