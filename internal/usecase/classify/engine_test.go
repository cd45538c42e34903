package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/infra/yamlrulebook"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	rb, err := yamlrulebook.Default()
	require.NoError(t, err)
	e, err := New(rb)
	require.NoError(t, err)
	return e
}

func TestClassify_Table(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name       string
		request    string
		tool       domain.Tool
		confidence domain.Confidence
		alt        domain.Tool
		rule       int
		topic      string
	}{
		{
			name:       "bar chart of listed data",
			request:    "Plot a bar chart of the data: 12, 15, 9, 20",
			tool:       domain.ToolPlotly,
			confidence: domain.ConfidenceHigh,
			rule:       1,
			topic:      "Statistics",
		},
		{
			name:       "histogram of frequencies",
			request:    "Draw a histogram for the frequencies 4, 7, 12, 6",
			tool:       domain.ToolPlotly,
			confidence: domain.ConfidenceHigh,
			rule:       1,
			topic:      "Statistics",
		},
		{
			name:       "linear function",
			request:    "Graph y = 2x + 1",
			tool:       domain.ToolDesmos,
			confidence: domain.ConfidenceHigh,
			rule:       2,
			topic:      "Functions and graphs",
		},
		{
			name:       "function with explicit points",
			request:    "Graph y = 2x + 1 and mark the points (0, 1) and (1, 3)",
			tool:       domain.ToolDesmos,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolJSXGraph,
			rule:       2,
			topic:      "Functions and graphs",
		},
		{
			name:       "semicircle proof",
			request:    "Prove that the angle in a semicircle is 90°",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       3,
			topic:      "Circle geometry",
		},
		{
			name:       "construction",
			request:    "Construct the perpendicular bisector of AB",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       3,
			topic:      "Constructions and loci",
		},
		{
			name:       "reflection with coordinates",
			request:    "Reflect triangle PQR with P(1, 2), Q(3, 2) and R(2, 5) in the line y = x",
			tool:       domain.ToolJSXGraph,
			confidence: domain.ConfidenceHigh,
			rule:       4,
			topic:      "Transformations",
		},
		{
			name:       "reflection in a line without coordinates",
			request:    "Reflect triangle PQR in the line y = x",
			tool:       domain.ToolJSXGraph,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolMatplotlib,
			rule:       4,
			topic:      "Transformations",
		},
		{
			name:       "rotation about the origin",
			request:    "Rotate the shape 90° clockwise about the origin",
			tool:       domain.ToolJSXGraph,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolMatplotlib,
			rule:       4,
			topic:      "Transformations",
		},
		{
			name:       "vector between points",
			request:    "Find the vector AB given A(2, 3) and B(5, 7)",
			tool:       domain.ToolJSXGraph,
			confidence: domain.ConfidenceHigh,
			rule:       4,
			topic:      "Vectors",
		},
		{
			name:       "bearing",
			request:    "Draw bearing of 045° from A",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       5,
			topic:      "Bearings",
		},
		{
			name:       "enlargement without coordinates",
			request:    "Enlarge triangle ABC by scale factor 2",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       5,
			topic:      "Trigonometry and geometry",
		},
		{
			name:       "points to join",
			request:    "Plot the points A(1, 2) and B(4, 6) and join them",
			tool:       domain.ToolJSXGraph,
			confidence: domain.ConfidenceHigh,
			rule:       6,
			topic:      "Coordinate geometry",
		},
		{
			name:       "shaded inequality",
			request:    "Shade the region satisfying y > 2x - 1",
			tool:       domain.ToolDesmos,
			confidence: domain.ConfidenceHigh,
			rule:       7,
			topic:      "Inequalities",
		},
		{
			name:       "ladder against a wall",
			request:    "A ladder 5 m long leans against a wall",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       8,
			topic:      "Applications of geometry",
		},
		{
			name:       "landmark picture",
			request:    "Draw a picture of Edinburgh Castle",
			tool:       domain.ToolImageGeneration,
			confidence: domain.ConfidenceLow,
			alt:        domain.ToolMatplotlib,
			rule:       9,
			topic:      "General mathematics",
		},
		{
			name:       "linear equation",
			request:    "Solve 3x + 2 = 14",
			tool:       domain.ToolNone,
			confidence: domain.ConfidenceHigh,
			rule:       10,
			topic:      "Number and algebra",
		},
		{
			name:       "mean of a list",
			request:    "Calculate the mean of 3, 5, 7 and 9",
			tool:       domain.ToolNone,
			confidence: domain.ConfidenceHigh,
			rule:       10,
			topic:      "Number and algebra",
		},
		{
			name:       "degrees in a conversion",
			request:    "Convert 180 degrees to radians",
			tool:       domain.ToolNone,
			confidence: domain.ConfidenceHigh,
			rule:       10,
			topic:      "Number and algebra",
		},
		{
			name:       "gradient of a line to compute",
			request:    "Find the gradient of y = 3x + 2",
			tool:       domain.ToolNone,
			confidence: domain.ConfidenceHigh,
			rule:       10,
		},
		{
			name:       "data pairs written as coordinates",
			request:    "Draw a scatter graph of (1, 2), (2, 4) and (3, 5)",
			tool:       domain.ToolPlotly,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolJSXGraph,
			rule:       1,
			topic:      "Statistics",
		},
		{
			name:       "data without a chart type",
			request:    "The scores were 12, 15, 18 and 20. Draw a suitable diagram.",
			tool:       domain.ToolPlotly,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolMatplotlib,
			rule:       1,
			topic:      "Statistics",
		},
		{
			name:       "bare equation",
			request:    "y = x^2 - 4",
			tool:       domain.ToolDesmos,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolNone,
			rule:       2,
			topic:      "Functions and graphs",
		},
		{
			name:       "labelled angle is not a function",
			request:    "Draw triangle ABC with angle y = 50°",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       5,
			topic:      "Trigonometry and geometry",
		},
		{
			name:       "two labelled angles",
			request:    "Draw isosceles triangle PQR where angle y = 70° and angle x = 55°",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       5,
			topic:      "Trigonometry and geometry",
		},
		{
			name:       "labelled sides with units",
			request:    "Draw a right-angled triangle with sides x = 3 cm and y = 4 cm",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       5,
			topic:      "Trigonometry and geometry",
		},
		{
			name:       "original is not the origin",
			request:    "Enlarge the original triangle by scale factor 2",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       5,
			topic:      "Trigonometry and geometry",
		},
		{
			name:       "lone coordinate pair",
			request:    "The treasure is at (3, 4)",
			tool:       domain.ToolJSXGraph,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolMatplotlib,
			rule:       6,
			topic:      "Coordinate geometry",
		},
		{
			name:       "ladder that stretches up a wall",
			request:    "A ladder stretches 5 m up a wall; its foot is 2 m from the wall",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceHigh,
			rule:       8,
			topic:      "Applications of geometry",
		},
		{
			name:       "scenario without measurements",
			request:    "A ladder leans against a wall",
			tool:       domain.ToolMatplotlib,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolImageGeneration,
			rule:       8,
			topic:      "Applications of geometry",
		},
		{
			name:       "pair inside a calculation",
			request:    "Find the HCF of (12, 18)",
			tool:       domain.ToolNone,
			confidence: domain.ConfidenceHigh,
			rule:       10,
			topic:      "Number and algebra",
		},
		{
			name:       "nothing to draw or calculate",
			request:    "Tell me about prime numbers",
			tool:       domain.ToolNone,
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolMatplotlib,
			rule:       10,
			topic:      "General mathematics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Classify(context.Background(), tt.request)
			require.NoError(t, err)

			assert.Equal(t, tt.tool, got.Tool)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.rule, got.Rule, "reasoning: %s", got.Reasoning)
			assert.Equal(t, tt.alt, got.Alt())
			if tt.topic != "" {
				assert.Equal(t, tt.topic, got.CurriculumTopic)
			}
			assert.NoError(t, domain.ValidateClassification(got))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	e := newEngine(t)
	req := "Graph y = x^2 - 4 and label the turning point"

	first, err := e.Classify(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Classify(context.Background(), req)
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("classification changed between runs (-first +again):\n%s", diff)
		}
	}
}

func TestClassify_EmptyRequest(t *testing.T) {
	e := newEngine(t)
	_, err := e.Classify(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidRequest))
	assert.True(t, errors.Is(err, domain.ErrEmptyRequest))
}

func TestClassify_CanceledContext(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Classify(ctx, "Graph y = 2x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify_ReasoningNamesRule(t *testing.T) {
	e := newEngine(t)
	got, err := e.Classify(context.Background(), "Graph y = 2x + 1")
	require.NoError(t, err)
	assert.Contains(t, got.Reasoning, "Rule 2 (function graph)")
	assert.Contains(t, got.VisualizationFocus, "y = 2x + 1")
}

func TestExplain_TraceCoversEveryRule(t *testing.T) {
	e := newEngine(t)
	req := "Reflect triangle PQR in the line y = x"

	ex, err := e.Explain(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, ex.Trace, len(Rules()))

	got, err := e.Classify(context.Background(), req)
	require.NoError(t, err)
	if diff := cmp.Diff(got, ex.Classification); diff != "" {
		t.Fatalf("Explain disagrees with Classify (-classify +explain):\n%s", diff)
	}

	for i, tr := range ex.Trace {
		assert.Equal(t, i+1, tr.Rule)
		assert.NotEmpty(t, tr.Detail, "rule %d has no detail", tr.Rule)
	}
	assert.False(t, ex.Trace[1].Matched, "reference line must not count as a function")
	assert.True(t, ex.Trace[3].Matched)
	assert.True(t, ex.Trace[9].Matched, "the fallback rule always matches")
}

func TestRules_PriorityOrder(t *testing.T) {
	want := []domain.Tool{
		domain.ToolPlotly, domain.ToolDesmos, domain.ToolMatplotlib, domain.ToolJSXGraph,
		domain.ToolMatplotlib, domain.ToolJSXGraph, domain.ToolDesmos, domain.ToolMatplotlib,
		domain.ToolImageGeneration, domain.ToolNone,
	}
	var got []domain.Tool
	for _, r := range Rules() {
		got = append(got, r.Tool)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rule tools mismatch (-want +got):\n%s", diff)
	}
}

func TestNew_RejectsEmptyKeyword(t *testing.T) {
	rb := domain.Rulebook{Vocabulary: map[domain.Category][]string{domain.CatGeometry: {"$"}}}
	_, err := New(rb)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindInvalidConfig))
}
