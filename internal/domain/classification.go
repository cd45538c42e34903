package domain

// Classification is the routing decision for one visualization request.
// AlternativeTool is nil for HIGH confidence and set otherwise.
type Classification struct {
	Tool               Tool       `json:"tool"`
	Confidence         Confidence `json:"confidence"`
	Reasoning          string     `json:"reasoning"`
	VisualizationFocus string     `json:"visualization_focus"`
	AlternativeTool    *Tool      `json:"alternative_tool"`
	CurriculumTopic    string     `json:"curriculum_topic"`

	// Rule is the priority number of the rule that decided the tool.
	Rule int `json:"rule"`
}

// Alt returns the alternative tool or "" when none is set.
func (c Classification) Alt() Tool {
	if c.AlternativeTool == nil {
		return ""
	}
	return *c.AlternativeTool
}

// ToolPtr is a convenience for building records and expectations.
func ToolPtr(t Tool) *Tool {
	return &t
}

// RuleTrace records how a single rule evaluated against a request.
type RuleTrace struct {
	Rule    int    `json:"rule"`
	Name    string `json:"name"`
	Tool    Tool   `json:"tool"`
	Matched bool   `json:"matched"`
	Detail  string `json:"detail"`
}

// Explanation is a classification plus the full rule trace that produced it.
type Explanation struct {
	Request        string         `json:"request"`
	Classification Classification `json:"classification"`
	Trace          []RuleTrace    `json:"trace"`
}
