package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/aalvaropc/diagroute/internal/domain"
)

func graphCase() domain.Classification {
	return domain.Classification{
		Tool:            domain.ToolDesmos,
		Confidence:      domain.ConfidenceHigh,
		Reasoning:       "Rule 2 (function graph): function notation with a plotting verb.",
		CurriculumTopic: "Functions and graphs",
		Rule:            2,
	}
}

func TestRunSuite_Execute_StoreNil(t *testing.T) {
	s := domain.Suite{
		Name:  "graphs",
		Cases: []domain.Case{{Name: "linear", Request: "Graph y = 2x"}},
	}
	cl := &fakeClassifier{answers: map[string]domain.Classification{"Graph y = 2x": graphCase()}}
	uc := NewRunSuite(fakeSuiteLoader{suite: s}, cl, nil, WithRulebookName("default"))

	run, id, err := uc.Execute(context.Background(), "graphs.yaml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id when store is nil, got %q", id)
	}
	if run.SuiteName != "graphs" || run.Rulebook != "default" || run.SuitePath != "graphs.yaml" {
		t.Fatalf("unexpected run header: %+v", run)
	}
	if run.EndedAt.Before(run.StartedAt) {
		t.Fatalf("expected EndedAt >= StartedAt")
	}
}

func TestRunSuite_Execute_RendersVarsAndEvaluates(t *testing.T) {
	s := domain.Suite{
		Name: "graphs",
		Vars: domain.Vars{"f": "y = x", "verb": "Plot"},
		Cases: []domain.Case{
			{
				Name:    "pass",
				Request: "{{verb}} {{f}}",
				Expect: domain.Expectations{
					Tool:       ptr(domain.ToolDesmos),
					Confidence: ptr(domain.ConfidenceHigh),
				},
			},
			{
				Name:    "same request",
				Request: "Graph {{f}}",
				Expect:  domain.Expectations{Tool: ptr(domain.ToolDesmos)},
			},
		},
	}
	cl := &fakeClassifier{answers: map[string]domain.Classification{"Graph y = 2x": graphCase()}}
	uc := NewRunSuite(fakeSuiteLoader{suite: s}, cl, nil)

	// Override wins over the suite var.
	run, _, err := uc.Execute(context.Background(), "graphs.yaml", domain.Vars{"verb": "Graph", "f": "y = 2x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cl.calls(); len(got) != 2 || got[0] != "Graph y = 2x" {
		t.Fatalf("expected rendered requests, got %v", got)
	}
	if run.Results[0].Failed() {
		t.Fatalf("expected first case to pass: %+v", run.Results[0])
	}
	if run.Failures() != 0 {
		t.Fatalf("expected no failures, got %d", run.Failures())
	}
}

func TestRunSuite_Execute_AssertionFailure(t *testing.T) {
	s := domain.Suite{
		Name: "s",
		Cases: []domain.Case{{
			Name:    "wrong tool",
			Request: "Solve 2x = 4",
			Expect:  domain.Expectations{Tool: ptr(domain.ToolDesmos)},
		}},
	}
	uc := NewRunSuite(fakeSuiteLoader{suite: s}, &fakeClassifier{}, nil)

	run, _, err := uc.Execute(context.Background(), "s.yaml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Failures() != 1 {
		t.Fatalf("expected 1 failure, got %d", run.Failures())
	}
	if a := run.Results[0].Assertions; len(a) != 1 || a[0].Passed {
		t.Fatalf("expected failed tool assertion, got %+v", a)
	}
}

func TestRunSuite_Execute_ContractViolationFailsCase(t *testing.T) {
	bad := graphCase()
	bad.Confidence = domain.ConfidenceMedium // missing alternative_tool

	s := domain.Suite{Name: "s", Cases: []domain.Case{{Name: "c", Request: "r"}}}
	cl := &fakeClassifier{answers: map[string]domain.Classification{"r": bad}}
	run, _, err := NewRunSuite(fakeSuiteLoader{suite: s}, cl, nil).Execute(context.Background(), "s.yaml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Results[0].Violations) == 0 {
		t.Fatalf("expected violations, got none")
	}
	if !run.Results[0].Failed() {
		t.Fatalf("expected case to fail on violations")
	}
}

func TestRunSuite_Execute_MissingVarContinues(t *testing.T) {
	s := domain.Suite{
		Name: "s",
		Cases: []domain.Case{
			{Name: "missing", Request: "Draw {{shape}}"},
			{Name: "ok", Request: "Solve x + 1 = 2"},
		},
	}
	cl := &fakeClassifier{}
	run, _, err := NewRunSuite(fakeSuiteLoader{suite: s}, cl, nil).Execute(context.Background(), "s.yaml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	if run.Results[0].Error == "" {
		t.Fatalf("expected first case to carry the render error")
	}
	if run.Results[1].Failed() {
		t.Fatalf("expected second case to pass: %+v", run.Results[1])
	}
	if len(cl.calls()) != 1 {
		t.Fatalf("expected only the renderable case to be classified, got %v", cl.calls())
	}
}

func TestRunSuite_Execute_ClassifierErrorRecorded(t *testing.T) {
	s := domain.Suite{Name: "s", Cases: []domain.Case{{Name: "c", Request: "boom"}}}
	cl := &fakeClassifier{errs: map[string]error{"boom": errors.New("classifier down")}}

	run, _, err := NewRunSuite(fakeSuiteLoader{suite: s}, cl, nil).Execute(context.Background(), "s.yaml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Results[0].Error != "classifier down" {
		t.Fatalf("expected recorded error, got %q", run.Results[0].Error)
	}
}

func TestRunSuite_Execute_StoreCalled(t *testing.T) {
	s := domain.Suite{Name: "s", Cases: []domain.Case{{Name: "c", Request: "r"}}}
	store := &fakeStore{}

	_, id, err := NewRunSuite(fakeSuiteLoader{suite: s}, &fakeClassifier{}, store).Execute(context.Background(), "s.yaml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "run-123" {
		t.Fatalf("expected id=run-123, got %q", id)
	}
	if !store.saved || store.last.SuiteName != "s" {
		t.Fatal("expected SaveRun to be called with the run")
	}
}

func TestRunSuite_Execute_StoreSaveError(t *testing.T) {
	s := domain.Suite{Name: "s", Cases: []domain.Case{{Name: "c", Request: "r"}}}
	saveErr := errors.New("store unavailable")

	run, id, err := NewRunSuite(fakeSuiteLoader{suite: s}, &fakeClassifier{}, &fakeStore{err: saveErr}).Execute(context.Background(), "s.yaml", nil)
	if !errors.Is(err, saveErr) {
		t.Fatalf("expected wrapped saveErr, got %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id on store error, got %q", id)
	}
	// run should still be returned so caller can inspect results.
	if len(run.Results) != 1 {
		t.Fatalf("expected 1 result even on store error, got %d", len(run.Results))
	}
}

func TestRunSuite_Execute_ErrorLoadingSuite(t *testing.T) {
	loadErr := errors.New("suite not found")
	_, _, err := NewRunSuite(fakeSuiteLoader{err: loadErr}, &fakeClassifier{}, nil).Execute(context.Background(), "s.yaml", nil)
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected wrapped loadErr, got %v", err)
	}
}

func TestRunSuite_Execute_ContextCancelledBeforeFirstCase(t *testing.T) {
	s := domain.Suite{Name: "s", Cases: []domain.Case{{Name: "c", Request: "r"}}}
	cl := &fakeClassifier{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, id, err := NewRunSuite(fakeSuiteLoader{suite: s}, cl, &fakeStore{}).Execute(ctx, "s.yaml", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if id != "" {
		t.Fatalf("expected no run id, got %q", id)
	}
	if len(cl.calls()) != 0 {
		t.Fatalf("expected no classifier calls, got %v", cl.calls())
	}
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		t.Fatalf("expected timestamps on the partial run")
	}
}

func TestRunSuite_Execute_ContextCancelledDuringIteration(t *testing.T) {
	s := domain.Suite{Name: "s", Cases: []domain.Case{
		{Name: "c1", Request: "r1"},
		{Name: "c2", Request: "r2"},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cl := &fakeClassifier{}
	cl.onCall = func(req string) {
		if req == "r2" {
			cancel()
		}
	}

	run, _, err := NewRunSuite(fakeSuiteLoader{suite: s}, cl, nil).Execute(ctx, "s.yaml", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// First case completed before cancellation was detected.
	if len(run.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(run.Results))
	}
}
