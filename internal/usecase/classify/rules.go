package classify

import (
	"fmt"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
)

// verdict is what a rule returns when it matches.
type verdict struct {
	confidence domain.Confidence
	alt        domain.Tool // "" when confidence is HIGH
	detail     string
	focus      string
}

type rule struct {
	id   int
	name string
	tool domain.Tool

	// topics are the categories consulted first when naming the curriculum topic.
	topics []domain.Category
	topic  string

	eval func(f Features) (verdict, bool, string)
}

// RuleInfo describes a rule for listings.
type RuleInfo struct {
	ID   int
	Name string
	Tool domain.Tool
}

// rules are evaluated in order; the first match decides the tool.
var rules = []rule{
	{
		id: 1, name: "numeric data", tool: domain.ToolPlotly,
		topics: []domain.Category{domain.CatStatistics, domain.CatData},
		topic:  "Statistics",
		eval:   ruleNumericData,
	},
	{
		id: 2, name: "function graph", tool: domain.ToolDesmos,
		topics: []domain.Category{domain.CatCurves, domain.CatFunctionTransfms},
		topic:  "Functions and graphs",
		eval:   ruleFunctionGraph,
	},
	{
		id: 3, name: "circle theorem, proof or construction", tool: domain.ToolMatplotlib,
		topics: []domain.Category{domain.CatCircleTheorems, domain.CatConstructions, domain.CatProofs},
		topic:  "Geometry",
		eval:   ruleCircleProofConstruction,
	},
	{
		id: 4, name: "coordinate transformation or vector", tool: domain.ToolJSXGraph,
		topics: []domain.Category{domain.CatTransformations, domain.CatVectors},
		topic:  "Transformations",
		eval:   ruleTransformationVector,
	},
	{
		id: 5, name: "angles, bearings or geometry without coordinates", tool: domain.ToolMatplotlib,
		topics: []domain.Category{domain.CatBearings, domain.CatGeometry},
		topic:  "Geometry",
		eval:   ruleGeometryNoCoordinates,
	},
	{
		id: 6, name: "lines and points with coordinates", tool: domain.ToolJSXGraph,
		topics: []domain.Category{domain.CatLinesPoints, domain.CatAxes},
		topic:  "Coordinate geometry",
		eval:   ruleCoordinatePoints,
	},
	{
		id: 7, name: "inequality or function transformation", tool: domain.ToolDesmos,
		topics: []domain.Category{domain.CatInequalities, domain.CatFunctionTransfms},
		topic:  "Inequalities",
		eval:   ruleInequalityFunctionTransform,
	},
	{
		id: 8, name: "real-world scenario with a geometric model", tool: domain.ToolMatplotlib,
		topics: []domain.Category{domain.CatRealWorld},
		topic:  "Applications of geometry",
		eval:   ruleRealWorld,
	},
	{
		id: 9, name: "image generation (last resort)", tool: domain.ToolImageGeneration,
		eval: ruleImageGeneration,
	},
	{
		id: 10, name: "no spatial component", tool: domain.ToolNone,
		eval: ruleNoDiagram,
	},
}

// calculationOnly is true when the request asks to compute something and
// nothing asks for a picture.
func calculationOnly(f Features) bool {
	return f.Has(domain.CatCalculation) && !f.Has(domain.CatPlotVerbs) && !f.Has(domain.CatVisual)
}

func ruleNumericData(f Features) (verdict, bool, string) {
	dataPresent := f.DataList >= 3 || (f.Has(domain.CatData) && f.Numbers >= 3)
	chart := f.Has(domain.CatStatistics)

	switch {
	case dataPresent && chart:
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     fmt.Sprintf("%d numeric values with chart vocabulary (%s)", max(f.DataList, f.Numbers), strings.Join(f.Hits[domain.CatStatistics], ", ")),
			focus:      fmt.Sprintf("%s of the given data values", chartName(f)),
		}, true, ""
	case chart && len(f.Coordinates) >= 3:
		return verdict{
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolJSXGraph,
			detail:     fmt.Sprintf("%d data pairs written as coordinates with chart vocabulary", len(f.Coordinates)),
			focus:      fmt.Sprintf("%s of the paired data", chartName(f)),
		}, true, ""
	case dataPresent && (f.Has(domain.CatPlotVerbs) || f.Has(domain.CatVisual)) && !f.HasCoordinates() && !f.FunctionNotation:
		return verdict{
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolMatplotlib,
			detail:     fmt.Sprintf("%d numeric values to display but no chart type named", max(f.DataList, f.Numbers)),
			focus:      "Chart of the given data values",
		}, true, ""
	case dataPresent:
		return verdict{}, false, "numeric values present but no request to chart them"
	case chart:
		return verdict{}, false, "chart vocabulary but no literal data"
	}
	return verdict{}, false, "no numeric data"
}

func chartName(f Features) string {
	hits := f.Hits[domain.CatStatistics]
	if len(hits) == 0 {
		return "Chart"
	}
	name := hits[0]
	for _, h := range hits {
		if len(h) > len(name) {
			name = h
		}
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func ruleFunctionGraph(f Features) (verdict, bool, string) {
	eq := f.FunctionNotation && !f.ReferenceLine
	curve := f.Has(domain.CatCurves)
	plot := f.Has(domain.CatPlotVerbs)

	if !eq && !curve {
		if f.FunctionNotation {
			return verdict{}, false, "equation names a reference line, not a function to plot"
		}
		return verdict{}, false, "no function notation or curve vocabulary"
	}
	if eq && !curve && !plot && f.Has(domain.CatCalculation) {
		return verdict{}, false, "equation appears in a calculation, not a plotting request"
	}

	focus := "Plotted curve with intercepts and key points labelled"
	if len(f.Equations) > 0 {
		focus = fmt.Sprintf("Graph of %s with intercepts and key points labelled", strings.Join(f.Equations, " and "))
	}

	switch {
	case len(f.Coordinates) > 0:
		return verdict{
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolJSXGraph,
			detail:     fmt.Sprintf("function notation decides DESMOS but %d explicit coordinate pair(s) also given", len(f.Coordinates)),
			focus:      focus,
		}, true, ""
	case plot || curve:
		detail := "function notation with a plotting verb"
		if !eq {
			detail = fmt.Sprintf("curve vocabulary (%s)", strings.Join(f.Hits[domain.CatCurves], ", "))
		}
		return verdict{confidence: domain.ConfidenceHigh, detail: detail, focus: focus}, true, ""
	default:
		return verdict{
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolNone,
			detail:     "bare function notation without a request to plot it",
			focus:      focus,
		}, true, ""
	}
}

func ruleCircleProofConstruction(f Features) (verdict, bool, string) {
	if f.HasCoordinates() {
		return verdict{}, false, "explicit coordinates given"
	}

	geometric := f.Has(domain.CatGeometry) || f.Degrees || f.Has(domain.CatCircleTheorems)
	switch {
	case f.Has(domain.CatCircleTheorems):
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     fmt.Sprintf("circle theorem vocabulary (%s)", strings.Join(f.Hits[domain.CatCircleTheorems], ", ")),
			focus:      "Circle with chords, tangents and the angles of the theorem marked",
		}, true, ""
	case f.Has(domain.CatConstructions):
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     fmt.Sprintf("construction without coordinates (%s)", strings.Join(f.Hits[domain.CatConstructions], ", ")),
			focus:      "Construction lines and arcs with the constructed result highlighted",
		}, true, ""
	case f.Has(domain.CatProofs) && geometric:
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     "geometric proof without coordinates",
			focus:      "Figure with the angles and sides used in the proof labelled",
		}, true, ""
	}
	return verdict{}, false, "no circle theorem, construction or geometric proof"
}

func ruleTransformationVector(f Features) (verdict, bool, string) {
	tv := f.Has(domain.CatTransformations) || f.Has(domain.CatVectors)
	if !tv {
		return verdict{}, false, "no transformation or vector vocabulary"
	}

	kind := "transformation"
	if f.Has(domain.CatVectors) && !f.Has(domain.CatTransformations) {
		kind = "vector"
	}

	switch {
	case f.HasCoordinates():
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     fmt.Sprintf("%s with explicit coordinates %s", kind, pointList(f.Coordinates)),
			focus:      fmt.Sprintf("Object and image on coordinate axes with %s labelled", pointList(f.Coordinates)),
		}, true, ""
	case f.ReferenceLine || f.Has(domain.CatAxes):
		return verdict{
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolMatplotlib,
			detail:     fmt.Sprintf("%s referenced to a line or axes but no explicit coordinates", kind),
			focus:      "Object, image and the reference line on a coordinate grid",
		}, true, ""
	}
	return verdict{}, false, kind + " vocabulary but no coordinate context"
}

func ruleGeometryNoCoordinates(f Features) (verdict, bool, string) {
	if f.HasCoordinates() {
		return verdict{}, false, "explicit coordinates given"
	}
	if f.ReferenceLine {
		return verdict{}, false, "request is referenced to a coordinate line"
	}

	switch {
	case f.Has(domain.CatBearings):
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     "bearing without coordinates",
			focus:      "North line, bearing angle measured clockwise and the labelled points",
		}, true, ""
	case f.Has(domain.CatGeometry) || (f.Degrees && !calculationOnly(f)):
		detail := "geometry without coordinates"
		if hits := f.Hits[domain.CatGeometry]; len(hits) > 0 {
			detail = fmt.Sprintf("geometry without coordinates (%s)", strings.Join(hits, ", "))
		}
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     detail,
			focus:      "Shape with the given angles and lengths labelled",
		}, true, ""
	}
	if f.Degrees {
		return verdict{}, false, "angle appears only in a calculation"
	}
	return verdict{}, false, "no angle, bearing or shape vocabulary"
}

func ruleCoordinatePoints(f Features) (verdict, bool, string) {
	n := len(f.Coordinates)
	switch {
	case n >= 2:
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     fmt.Sprintf("%d explicit coordinate pairs %s", n, pointList(f.Coordinates)),
			focus:      fmt.Sprintf("Points %s and the lines joining them on a coordinate grid", pointList(f.Coordinates)),
		}, true, ""
	case n == 1 && (f.Has(domain.CatLinesPoints) || f.Has(domain.CatPlotVerbs) || f.Has(domain.CatAxes)):
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     fmt.Sprintf("point %s to plot", pointList(f.Coordinates)),
			focus:      fmt.Sprintf("Point %s on a coordinate grid", pointList(f.Coordinates)),
		}, true, ""
	case n == 1 && calculationOnly(f):
		return verdict{}, false, fmt.Sprintf("pair %s is an argument to a calculation", pointList(f.Coordinates))
	case n == 1:
		return verdict{
			confidence: domain.ConfidenceMedium,
			alt:        domain.ToolMatplotlib,
			detail:     fmt.Sprintf("single coordinate pair %s without line or point vocabulary", pointList(f.Coordinates)),
			focus:      fmt.Sprintf("Point %s on a coordinate grid", pointList(f.Coordinates)),
		}, true, ""
	}
	return verdict{}, false, "no explicit coordinates"
}

func ruleInequalityFunctionTransform(f Features) (verdict, bool, string) {
	if f.Has(domain.CatFunctionTransfms) {
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     fmt.Sprintf("function transformation (%s)", strings.Join(f.Hits[domain.CatFunctionTransfms], ", ")),
			focus:      "Original and transformed graphs overlaid with the mapping of key points",
		}, true, ""
	}

	ineq := f.Inequality || f.Has(domain.CatInequalities)
	if !ineq {
		return verdict{}, false, "no inequality or function transformation"
	}
	if calculationOnly(f) {
		return verdict{}, false, "inequality is to be solved, not shown"
	}
	return verdict{
		confidence: domain.ConfidenceHigh,
		detail:     "inequality to be represented graphically",
		focus:      "Boundary lines with the region satisfying the inequality shaded",
	}, true, ""
}

func ruleRealWorld(f Features) (verdict, bool, string) {
	if !f.Has(domain.CatRealWorld) {
		return verdict{}, false, "no real-world object reducible to a shape"
	}
	detail := fmt.Sprintf("real-world scenario (%s) reduced to its geometric model", strings.Join(f.Hits[domain.CatRealWorld], ", "))
	focus := "Geometric abstraction of the scenario (e.g. right-angled triangle) with measurements labelled"
	if f.Measurement {
		return verdict{confidence: domain.ConfidenceHigh, detail: detail, focus: focus}, true, ""
	}
	return verdict{
		confidence: domain.ConfidenceMedium,
		alt:        domain.ToolImageGeneration,
		detail:     detail + " without measurements",
		focus:      focus,
	}, true, ""
}

func ruleImageGeneration(f Features) (verdict, bool, string) {
	if !f.Has(domain.CatVisual) {
		return verdict{}, false, "no request for a picture"
	}
	if calculationOnly(f) {
		return verdict{}, false, "picture words inside a calculation"
	}
	return verdict{
		confidence: domain.ConfidenceLow,
		alt:        domain.ToolMatplotlib,
		detail:     "visual request with no geometric, functional or statistical reduction; image generation costs roughly 10x a programmatic diagram",
		focus:      "Illustration of the described scene",
	}, true, ""
}

func ruleNoDiagram(f Features) (verdict, bool, string) {
	if f.Has(domain.CatCalculation) {
		return verdict{
			confidence: domain.ConfidenceHigh,
			detail:     fmt.Sprintf("pure calculation (%s) with no spatial component", strings.Join(f.Hits[domain.CatCalculation], ", ")),
			focus:      "No diagram required",
		}, true, ""
	}
	return verdict{
		confidence: domain.ConfidenceMedium,
		alt:        domain.ToolMatplotlib,
		detail:     "no spatial, functional or statistical component recognised",
		focus:      "No diagram required",
	}, true, ""
}

func pointList(ps []Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}
