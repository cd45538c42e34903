package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/aalvaropc/diagroute/internal/app/template"
	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/ports"
	ucassert "github.com/aalvaropc/diagroute/internal/usecase/assert"
)

type RunSuite struct {
	suites     ports.SuiteLoader
	classifier ports.Classifier
	store      ports.RunStore
	rulebook   string
}

type RunOption func(*RunSuite)

// WithRulebookName records which rulebook produced the run.
func WithRulebookName(name string) RunOption {
	return func(uc *RunSuite) { uc.rulebook = name }
}

// NewRunSuite wires the use case. store may be nil to skip persistence.
func NewRunSuite(sl ports.SuiteLoader, cl ports.Classifier, store ports.RunStore, opts ...RunOption) *RunSuite {
	uc := &RunSuite{
		suites:     sl,
		classifier: cl,
		store:      store,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute classifies every case of the suite and evaluates its expectations.
// On cancellation the partial run is returned together with the context error.
func (uc *RunSuite) Execute(ctx context.Context, suitePath string, overrides domain.Vars) (domain.SuiteRun, string, error) {
	s, err := uc.suites.LoadSuite(suitePath)
	if err != nil {
		return domain.SuiteRun{}, "", err
	}

	// suite vars < command-line overrides
	vars := domain.Merge(s.Vars, overrides)

	run := domain.SuiteRun{
		SuiteName: s.Name,
		SuitePath: suitePath,
		Rulebook:  uc.rulebook,
		StartedAt: time.Now(),
		Results:   make([]domain.CaseResult, 0, len(s.Cases)),
	}

	for _, c := range s.Cases {
		if err := ctx.Err(); err != nil {
			run.EndedAt = time.Now()
			return run, "", err
		}

		cr, err := uc.runCase(ctx, c, vars)
		if err != nil {
			run.EndedAt = time.Now()
			return run, "", err
		}
		run.Results = append(run.Results, cr)
	}

	run.EndedAt = time.Now()

	if uc.store == nil {
		return run, "", nil
	}
	id, err := uc.store.SaveRun(run)
	if err != nil {
		return run, "", fmt.Errorf("save run: %w", err)
	}
	return run, id, nil
}

// runCase only returns an error for cancellation; every other failure is
// recorded on the case result so the rest of the suite still runs.
func (uc *RunSuite) runCase(ctx context.Context, c domain.Case, vars domain.Vars) (domain.CaseResult, error) {
	cr := domain.CaseResult{
		Name:       c.Name,
		Request:    c.Request,
		Assertions: []domain.AssertionResult{},
	}

	req, err := template.RenderString(c.Request, vars)
	if err != nil {
		cr.Error = err.Error()
		return cr, nil
	}
	cr.Request = req

	cls, err := uc.classifier.Classify(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cr, ctxErr
		}
		cr.Error = err.Error()
		return cr, nil
	}

	cr.Classification = cls
	cr.Assertions = ucassert.Evaluate(c.Expect, cls)
	cr.Violations = domain.Violations(cls)
	return cr, nil
}
