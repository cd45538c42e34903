// Package mcpserver exposes the classifier as Model Context Protocol tools so
// an assistant can route diagram requests before generating them.
package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"github.com/aalvaropc/diagroute/internal/ports"
)

const name = "diagroute"

// New registers the classification tools on a fresh MCP server.
func New(cl ports.Classifier, version string) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	classify := NewClassifyTool(cl)
	s.AddTool(classify.Definition(), classify.Handle)

	explain := NewExplainTool(cl)
	s.AddTool(explain.Definition(), explain.Handle)

	validate := NewValidateTool()
	s.AddTool(validate.Definition(), validate.Handle)

	return s
}

// Serve speaks MCP over the given streams until ctx is canceled or in closes.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

const instructions = `diagroute picks the rendering tool for a maths visualization request.
Call classify_diagram_tool with the user's request before drawing anything and
use the returned tool: DESMOS (interactive graphs), MATPLOTLIB (static
geometry), JSXGRAPH (constructions with draggable points), PLOTLY (statistical
charts), IMAGE_GENERATION (real-world scenes) or NONE (no diagram needed).
When confidence is MEDIUM or LOW the alternative_tool is a reasonable fallback.`
