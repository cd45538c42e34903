package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/aalvaropc/diagroute/internal/domain"
)

func checkFormat(format string) error {
	switch format {
	case "pretty", "json", "":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printClassification(w io.Writer, c domain.Classification, format string) error {
	switch format {
	case "json":
		return writeJSON(w, c)
	case "pretty", "":
		printPrettyClassification(w, c)
		return nil
	default:
		return checkFormat(format)
	}
}

func printPrettyClassification(w io.Writer, c domain.Classification) {
	fmt.Fprintf(w, "Tool:        %s\n", c.Tool)
	fmt.Fprintf(w, "Confidence:  %s\n", c.Confidence)
	if c.AlternativeTool != nil {
		fmt.Fprintf(w, "Alternative: %s\n", *c.AlternativeTool)
	}
	fmt.Fprintf(w, "Topic:       %s\n", c.CurriculumTopic)
	fmt.Fprintf(w, "Focus:       %s\n", c.VisualizationFocus)
	fmt.Fprintf(w, "Reasoning:   %s\n", c.Reasoning)
}

func printExplanation(w io.Writer, ex domain.Explanation, format string) error {
	switch format {
	case "json":
		return writeJSON(w, ex)
	case "pretty", "":
		printPrettyClassification(w, ex.Classification)
		fmt.Fprintln(w)
		for _, t := range ex.Trace {
			fmt.Fprintf(w, "  %s %2d %-28s %s\n", mark(t.Matched), t.Rule, t.Name, t.Detail)
		}
		return nil
	default:
		return checkFormat(format)
	}
}

// explanationMarkdown lays out a trace as a Markdown report.
func explanationMarkdown(ex domain.Explanation) string {
	c := ex.Classification

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Tool)
	fmt.Fprintf(&b, "> %s\n\n", ex.Request)
	fmt.Fprintf(&b, "- **Confidence:** %s\n", c.Confidence)
	if c.AlternativeTool != nil {
		fmt.Fprintf(&b, "- **Alternative:** %s\n", *c.AlternativeTool)
	}
	fmt.Fprintf(&b, "- **Curriculum topic:** %s\n", c.CurriculumTopic)
	fmt.Fprintf(&b, "- **Visualization focus:** %s\n\n", c.VisualizationFocus)
	fmt.Fprintf(&b, "%s\n\n", c.Reasoning)

	b.WriteString("## Rules\n\n")
	b.WriteString("| # | Rule | Tool | Matched | Detail |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, t := range ex.Trace {
		matched := "no"
		if t.Matched {
			matched = "yes"
			if t.Rule == c.Rule {
				matched = "**decided**"
			}
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", t.Rule, t.Name, t.Tool, matched, escapeCell(t.Detail))
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderMarkdown(md string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func printRun(w io.Writer, run domain.SuiteRun, runID string, format string) error {
	switch format {
	case "json":
		// Wrap to carry the run id without changing the domain model.
		payload := map[string]any{
			"run_id": runID,
			"run":    run,
		}
		return writeJSON(w, payload)
	case "pretty", "":
		printPrettyRun(w, run, runID)
		return nil
	default:
		return checkFormat(format)
	}
}

func printPrettyRun(w io.Writer, run domain.SuiteRun, runID string) {
	total := run.EndedAt.Sub(run.StartedAt)
	if run.StartedAt.IsZero() || run.EndedAt.IsZero() {
		total = 0
	}

	fmt.Fprintf(w, "Suite:      %s\n", run.SuiteName)
	if run.Rulebook != "" {
		fmt.Fprintf(w, "Rulebook:   %s\n", run.Rulebook)
	}
	fmt.Fprintf(w, "Started:    %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Duration:   %s\n", total)
	if runID != "" {
		fmt.Fprintf(w, "Run ID:     %s\n", runID)
	}
	fmt.Fprintln(w)

	for _, r := range run.Results {
		status := "OK"
		if r.Failed() {
			status = "FAIL"
		}

		fmt.Fprintf(w, "- [%s] %s\n", status, r.Name)
		if r.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", r.Error)
			fmt.Fprintln(w)
			continue
		}

		c := r.Classification
		fmt.Fprintf(w, "  tool: %s (%s)", c.Tool, c.Confidence)
		if c.AlternativeTool != nil {
			fmt.Fprintf(w, " alt %s", *c.AlternativeTool)
		}
		fmt.Fprintf(w, " rule %d\n", c.Rule)

		for _, v := range r.Violations {
			fmt.Fprintf(w, "  violation: %s\n", v)
		}

		if len(r.Assertions) > 0 {
			pass, fail := countAssertionPassFail(r.Assertions)
			fmt.Fprintf(w, "  assertions: %d pass / %d fail\n", pass, fail)
			for _, a := range r.Assertions {
				fmt.Fprintf(w, "    %s %s: %s\n", mark(a.Passed), a.Name, a.Message)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d case(s), %d failed\n", len(run.Results), run.Failures())
}

func printBatchSummary(w io.Writer, results []domain.BatchResult, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "Classified %d request(s)\n", len(results))
	for _, k := range keys {
		fmt.Fprintf(w, "  %-17s %d\n", k, counts[k])
	}
}

func countAssertionPassFail(in []domain.AssertionResult) (pass int, fail int) {
	for _, a := range in {
		if a.Passed {
			pass++
		} else {
			fail++
		}
	}
	return pass, fail
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
