package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/ports"
)

// ClassifyTool returns the classification record for one request.
type ClassifyTool struct {
	classifier ports.Classifier
}

func NewClassifyTool(cl ports.Classifier) *ClassifyTool {
	return &ClassifyTool{classifier: cl}
}

func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("classify_diagram_tool",
		mcp.WithDescription("Choose the diagram tool for a maths visualization request. "+
			"Returns JSON with tool, confidence, reasoning, visualization_focus, alternative_tool and curriculum_topic."),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description("The visualization request in natural language"),
		),
	)
}

func (t *ClassifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("request")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c, err := t.classifier.Classify(ctx, text)
	if err != nil {
		return toolError(ctx, err)
	}
	return jsonResult(c)
}

// ExplainTool returns the classification plus every rule's verdict.
type ExplainTool struct {
	classifier ports.Classifier
}

func NewExplainTool(cl ports.Classifier) *ExplainTool {
	return &ExplainTool{classifier: cl}
}

func (t *ExplainTool) Definition() mcp.Tool {
	return mcp.NewTool("explain_diagram_tool",
		mcp.WithDescription("Classify a request and report how each of the ten priority rules evaluated."),
		mcp.WithString("request",
			mcp.Required(),
			mcp.Description("The visualization request in natural language"),
		),
	)
}

func (t *ExplainTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("request")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ex, err := t.classifier.Explain(ctx, text)
	if err != nil {
		return toolError(ctx, err)
	}
	return jsonResult(ex)
}

// ValidateTool checks a classification record produced elsewhere.
type ValidateTool struct{}

func NewValidateTool() *ValidateTool {
	return &ValidateTool{}
}

func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("validate_classification",
		mcp.WithDescription("Check that a classification JSON record is well formed: known tool and confidence, "+
			"non-empty reasoning, and alternative_tool set exactly when confidence is MEDIUM or LOW."),
		mcp.WithString("record",
			mcp.Required(),
			mcp.Description("The classification record as a JSON object"),
		),
	)
}

type validation struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

func (t *ValidateTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("record")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var c domain.Classification
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&c); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("record is not a JSON object: %v", err)), nil
	}

	v := domain.Violations(c)
	if v == nil {
		v = []string{}
	}
	return jsonResult(validation{Valid: len(v) == 0, Violations: v})
}

// toolError reports request problems to the model and leaves cancellation
// to the transport.
func toolError(ctx context.Context, err error) (*mcp.CallToolResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return mcp.NewToolResultError(err.Error()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
