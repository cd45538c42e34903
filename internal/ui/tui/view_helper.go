package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/usecase/classify"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func renderClassification(c domain.Classification) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tool:        %s\n", c.Tool)
	fmt.Fprintf(&b, "Confidence:  %s\n", c.Confidence)
	if c.AlternativeTool != nil {
		fmt.Fprintf(&b, "Alternative: %s\n", *c.AlternativeTool)
	}
	fmt.Fprintf(&b, "Topic:       %s\n", c.CurriculumTopic)
	fmt.Fprintf(&b, "Focus:       %s\n", c.VisualizationFocus)
	fmt.Fprintf(&b, "\n%s\n", c.Reasoning)

	return b.String()
}

func renderTrace(trace []domain.RuleTrace, width int) string {
	var b strings.Builder
	for _, t := range trace {
		m := "·"
		if t.Matched {
			m = "●"
		}
		line := fmt.Sprintf("%s %2d %-26s %s", m, t.Rule, t.Name, t.Detail)
		b.WriteString(clampString(line, width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRunDetails(run domain.SuiteRun, th Theme, width int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d case(s), %d failed\n\n", len(run.Results), run.Failures())

	for _, cr := range run.Results {
		status := th.Pass.Render("PASS")
		if cr.Failed() {
			status = th.Fail.Render("FAIL")
		}
		fmt.Fprintf(&b, "[%s] %s  %s/%s\n", status, cr.Name, cr.Classification.Tool, cr.Classification.Confidence)

		if cr.Error != "" {
			b.WriteString("    error: " + clampString(cr.Error, width) + "\n")
		}
		for _, v := range cr.Violations {
			b.WriteString("    violation: " + clampString(v, width) + "\n")
		}
		for _, a := range cr.Assertions {
			if a.Passed {
				continue
			}
			b.WriteString("    ✗ " + clampString(a.Name+": "+a.Message, width) + "\n")
		}
	}
	return b.String()
}

func renderRules() string {
	var b strings.Builder
	b.WriteString("First match wins.\n\n")
	for _, r := range classify.Rules() {
		fmt.Fprintf(&b, "%2d  %-28s %s\n", r.ID, r.Name, r.Tool)
	}
	return b.String()
}
