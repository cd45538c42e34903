package domain

import (
	"fmt"
	"strings"
)

// Violations lists every way c breaks the classification contract.
// An empty result means the record is well formed.
func Violations(c Classification) []string {
	var out []string

	if !c.Tool.Valid() {
		out = append(out, fmt.Sprintf("tool: %q is not one of %s", c.Tool, joinTools(Tools())))
	}
	if !c.Confidence.Valid() {
		out = append(out, fmt.Sprintf("confidence: %q is not one of HIGH, MEDIUM, LOW", c.Confidence))
	}
	if strings.TrimSpace(c.Reasoning) == "" {
		out = append(out, "reasoning: must not be empty")
	}

	switch {
	case c.Confidence.NeedsAlternative() && c.AlternativeTool == nil:
		out = append(out, fmt.Sprintf("alternative_tool: required when confidence is %s", c.Confidence))
	case c.Confidence == ConfidenceHigh && c.AlternativeTool != nil:
		out = append(out, "alternative_tool: must be null when confidence is HIGH")
	case c.AlternativeTool != nil && !c.AlternativeTool.Valid():
		out = append(out, fmt.Sprintf("alternative_tool: %q is not a known tool", *c.AlternativeTool))
	case c.AlternativeTool != nil && *c.AlternativeTool == c.Tool:
		out = append(out, "alternative_tool: must differ from tool")
	}

	return out
}

// ValidateClassification returns an error of kind KindInvalidClassification
// carrying every violation, or nil.
func ValidateClassification(c Classification) error {
	v := Violations(c)
	if len(v) == 0 {
		return nil
	}
	return &OpError{
		Op:   "classification.validate",
		Kind: KindInvalidClassification,
		Err:  fmt.Errorf("%w: %s", ErrInvalidClassification, strings.Join(v, "; ")),
	}
}

// ClassificationSchema is the JSON Schema of the Classification record.
func ClassificationSchema() map[string]any {
	tools := make([]any, 0, len(Tools()))
	for _, t := range Tools() {
		tools = append(tools, string(t))
	}
	altTools := append([]any{nil}, tools...)

	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"title":       "diagram-tool-classification",
		"description": "Routing decision selecting one diagram rendering backend for a visualization request",
		"type":        "object",
		"properties": map[string]any{
			"tool": map[string]any{
				"type": "string",
				"enum": tools,
			},
			"confidence": map[string]any{
				"type": "string",
				"enum": []any{"HIGH", "MEDIUM", "LOW"},
			},
			"reasoning": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"visualization_focus": map[string]any{
				"type":        "string",
				"description": "What the diagram should emphasize",
			},
			"alternative_tool": map[string]any{
				"type":        []any{"string", "null"},
				"enum":        altTools,
				"description": "Fallback tool; required when confidence is MEDIUM or LOW, null when HIGH",
			},
			"curriculum_topic": map[string]any{
				"type": "string",
			},
			"rule": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 10,
			},
		},
		"required": []any{"tool", "confidence", "reasoning", "visualization_focus", "alternative_tool", "curriculum_topic"},
		"if": map[string]any{
			"properties": map[string]any{"confidence": map[string]any{"const": "HIGH"}},
		},
		"then": map[string]any{
			"properties": map[string]any{"alternative_tool": map[string]any{"type": "null"}},
		},
		"else": map[string]any{
			"properties": map[string]any{"alternative_tool": map[string]any{"type": "string"}},
		},
		"additionalProperties": false,
	}
}

func joinTools(ts []Tool) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
