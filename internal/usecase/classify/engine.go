// Package classify routes a natural-language visualization request to one
// diagram rendering tool using priority-ordered rules over extracted features.
package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/ports"
)

// Engine is a deterministic rule-based classifier.
type Engine struct {
	rulebook domain.Rulebook
	analyzer *Analyzer
}

var _ ports.Classifier = (*Engine)(nil)

func New(rb domain.Rulebook) (*Engine, error) {
	a, err := NewAnalyzer(rb)
	if err != nil {
		return nil, err
	}
	return &Engine{rulebook: rb, analyzer: a}, nil
}

// Rulebook returns the vocabulary the engine was built from.
func (e *Engine) Rulebook() domain.Rulebook {
	return e.rulebook
}

// Rules lists the rules in priority order.
func Rules() []RuleInfo {
	out := make([]RuleInfo, 0, len(rules))
	for _, r := range rules {
		out = append(out, RuleInfo{ID: r.id, Name: r.name, Tool: r.tool})
	}
	return out
}

func (e *Engine) Classify(ctx context.Context, request string) (domain.Classification, error) {
	f, err := e.features(ctx, request)
	if err != nil {
		return domain.Classification{}, err
	}

	for _, r := range rules {
		if v, ok, _ := r.eval(f); ok {
			return e.record(r, v, f), nil
		}
	}
	// ruleNoDiagram always matches.
	return domain.Classification{}, &domain.OpError{
		Op:   "classify.classify",
		Kind: domain.KindExecution,
		Err:  fmt.Errorf("no rule matched: %w", domain.ErrExecution),
	}
}

// Explain evaluates every rule, not just up to the first match, and returns
// the winning classification together with the trace.
func (e *Engine) Explain(ctx context.Context, request string) (domain.Explanation, error) {
	f, err := e.features(ctx, request)
	if err != nil {
		return domain.Explanation{}, err
	}

	out := domain.Explanation{
		Request: request,
		Trace:   make([]domain.RuleTrace, 0, len(rules)),
	}

	decided := false
	for _, r := range rules {
		v, ok, why := r.eval(f)
		t := domain.RuleTrace{Rule: r.id, Name: r.name, Tool: r.tool, Matched: ok}
		if ok {
			t.Detail = v.detail
			if !decided {
				out.Classification = e.record(r, v, f)
				decided = true
			}
		} else {
			t.Detail = why
		}
		out.Trace = append(out.Trace, t)
	}

	return out, nil
}

func (e *Engine) features(ctx context.Context, request string) (Features, error) {
	if err := ctx.Err(); err != nil {
		return Features{}, err
	}
	if strings.TrimSpace(request) == "" {
		return Features{}, &domain.OpError{
			Op:   "classify.request",
			Kind: domain.KindInvalidRequest,
			Err:  domain.ErrEmptyRequest,
		}
	}
	return e.analyzer.Analyze(request), nil
}

func (e *Engine) record(r rule, v verdict, f Features) domain.Classification {
	c := domain.Classification{
		Tool:               r.tool,
		Confidence:         v.confidence,
		Reasoning:          fmt.Sprintf("Rule %d (%s): %s.", r.id, r.name, v.detail),
		VisualizationFocus: v.focus,
		CurriculumTopic:    e.topic(r, f),
		Rule:               r.id,
	}
	if v.confidence.NeedsAlternative() {
		c.AlternativeTool = domain.ToolPtr(v.alt)
	}
	return c
}

// topic prefers topics tied to the winning rule, then the rule's own label,
// then any topic with a vocabulary hit, then the rulebook default.
func (e *Engine) topic(r rule, f Features) string {
	if len(r.topics) > 0 {
		if t := e.matchTopic(f, r.topics); t != "" {
			return t
		}
	}
	if r.topic != "" {
		return r.topic
	}
	if t := e.matchTopic(f, nil); t != "" {
		return t
	}
	if e.rulebook.DefaultTopic != "" {
		return e.rulebook.DefaultTopic
	}
	return "General mathematics"
}

// matchTopic returns the first topic with a hit among allowed (any category when allowed is nil).
func (e *Engine) matchTopic(f Features, allowed []domain.Category) string {
	for _, tr := range e.rulebook.Topics {
		for _, c := range tr.Categories {
			if !f.Has(c) {
				continue
			}
			if allowed == nil || containsCategory(allowed, c) {
				return tr.Topic
			}
		}
	}
	return ""
}

func containsCategory(in []domain.Category, c domain.Category) bool {
	for _, x := range in {
		if x == c {
			return true
		}
	}
	return false
}
