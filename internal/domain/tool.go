package domain

import (
	"fmt"
	"strings"
)

// Tool is a diagram rendering backend.
type Tool string

const (
	ToolDesmos          Tool = "DESMOS"
	ToolMatplotlib      Tool = "MATPLOTLIB"
	ToolJSXGraph        Tool = "JSXGRAPH"
	ToolPlotly          Tool = "PLOTLY"
	ToolImageGeneration Tool = "IMAGE_GENERATION"
	ToolNone            Tool = "NONE"
)

// Tools lists every valid tool in a stable order.
func Tools() []Tool {
	return []Tool{ToolDesmos, ToolMatplotlib, ToolJSXGraph, ToolPlotly, ToolImageGeneration, ToolNone}
}

func (t Tool) Valid() bool {
	switch t {
	case ToolDesmos, ToolMatplotlib, ToolJSXGraph, ToolPlotly, ToolImageGeneration, ToolNone:
		return true
	}
	return false
}

// ParseTool accepts any casing and surrounding whitespace.
func ParseTool(s string) (Tool, error) {
	t := Tool(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown tool %q", s)
	}
	return t, nil
}

// Confidence is the classifier's certainty in the chosen tool.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// NeedsAlternative reports whether a record with this confidence must carry a fallback tool.
func (c Confidence) NeedsAlternative() bool {
	return c == ConfidenceMedium || c == ConfidenceLow
}

func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown confidence %q", s)
	}
	return c, nil
}
