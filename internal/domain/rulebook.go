package domain

// Category names a vocabulary list the analyzer matches against.
type Category string

const (
	CatStatistics       Category = "statistics"
	CatData             Category = "data"
	CatPlotVerbs        Category = "plot_verbs"
	CatCurves           Category = "curves"
	CatCircleTheorems   Category = "circle_theorems"
	CatConstructions    Category = "constructions"
	CatProofs           Category = "proofs"
	CatTransformations  Category = "transformations"
	CatVectors          Category = "vectors"
	CatGeometry         Category = "geometry"
	CatBearings         Category = "bearings"
	CatLinesPoints      Category = "lines_points"
	CatInequalities     Category = "inequalities"
	CatFunctionTransfms Category = "function_transformations"
	CatRealWorld        Category = "real_world"
	CatVisual           Category = "visual"
	CatCalculation      Category = "calculation"
	CatAxes             Category = "axes"
)

// Categories lists every category the classifier consults.
func Categories() []Category {
	return []Category{
		CatStatistics, CatData, CatPlotVerbs, CatCurves, CatCircleTheorems, CatConstructions,
		CatProofs, CatTransformations, CatVectors, CatGeometry, CatBearings,
		CatLinesPoints, CatInequalities, CatFunctionTransfms, CatRealWorld,
		CatVisual, CatCalculation, CatAxes,
	}
}

func (c Category) Known() bool {
	for _, k := range Categories() {
		if k == c {
			return true
		}
	}
	return false
}

// TopicRule maps vocabulary hits to a curriculum topic label.
// The first rule in Rulebook.Topics with any matching category wins.
type TopicRule struct {
	Topic      string
	Categories []Category
}

// Rulebook is the vocabulary the classifier matches requests against.
type Rulebook struct {
	Name         string
	Vocabulary   map[Category][]string
	Topics       []TopicRule
	DefaultTopic string
}

// Words returns the keywords for a category (nil if absent).
func (rb Rulebook) Words(c Category) []string {
	if rb.Vocabulary == nil {
		return nil
	}
	return rb.Vocabulary[c]
}
