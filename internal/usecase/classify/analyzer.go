package classify

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
)

// Point is an explicit coordinate pair found in a request.
type Point struct {
	Label string
	X, Y  float64
}

func (p Point) String() string {
	return p.Label + "(" + strconv.FormatFloat(p.X, 'f', -1, 64) + ", " + strconv.FormatFloat(p.Y, 'f', -1, 64) + ")"
}

// Features is the reduced form of a request that rules are evaluated against.
type Features struct {
	Text string

	Coordinates []Point
	// DataList is the length of the longest comma/semicolon separated run of
	// numbers outside coordinate pairs.
	DataList int
	// Numbers counts numeric literals outside coordinate pairs.
	Numbers int

	FunctionNotation bool
	Equations        []string
	// ReferenceLine is set when an equation names a mirror or reference line
	// ("reflect ... in the line y = x") rather than a function to plot.
	ReferenceLine bool

	Inequality  bool
	Degrees     bool
	Measurement bool

	Hits map[domain.Category][]string
}

// Has reports whether any keyword of category c occurs in the request.
func (f Features) Has(c domain.Category) bool {
	return len(f.Hits[c]) > 0
}

func (f Features) HasCoordinates() bool {
	return len(f.Coordinates) > 0
}

var (
	coordRe       = regexp.MustCompile(`(?:\b([A-Za-z]'?)\s*)?\(\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\)`)
	numberRe      = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	dataListRe    = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:\s*[,;]\s*(?:and\s+)?-?\d+(?:\.\d+)?){2,}`)
	functionRe    = regexp.MustCompile(`(?:^|[^a-z0-9])((?:y|[fgh]\s*\(\s*x\s*\))\s*=\s*[^,;.?]+)`)
	referenceRe   = regexp.MustCompile(`(?:\b(?:in|about|across|over|on)\s+the\s+(?:mirror\s+)?line\s+[xy]\s*=)|mirror line|line of reflection|line of symmetry`)
	inequalityRe  = regexp.MustCompile(`<=|>=|[<>≤≥⩽⩾]`)
	degreesRe     = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:°|º|degrees?\b)`)
	measurementRe = regexp.MustCompile(`\d+(?:\.\d+)?\s*(?:mm|cm|km|m|metres?|meters?|feet|ft|miles?|inches|knots|km/h|mph)\b`)
	constantRe    = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	quantityRe    = regexp.MustCompile(`\b(?:angles?|sides?|lengths?|edges?)\s*$`)
)

type matcher struct {
	word string
	re   *regexp.Regexp
}

// Analyzer reduces request text to Features using a compiled rulebook.
type Analyzer struct {
	vocab map[domain.Category][]matcher
}

// NewAnalyzer compiles the rulebook vocabulary. A keyword matches at the start
// of a word and may continue ("reflect" matches "reflection"); a trailing "$"
// requires the keyword to end at a word boundary ("sin$" does not match "single").
func NewAnalyzer(rb domain.Rulebook) (*Analyzer, error) {
	a := &Analyzer{vocab: map[domain.Category][]matcher{}}

	for cat, words := range rb.Vocabulary {
		for i, w := range words {
			raw := strings.ToLower(strings.TrimSpace(w))
			whole := strings.HasSuffix(raw, "$")
			raw = strings.TrimSuffix(raw, "$")
			if raw == "" {
				return nil, &domain.OpError{
					Op:   "classify.compile",
					Kind: domain.KindInvalidConfig,
					Err:  fmt.Errorf("vocabulary.%s[%d]: empty keyword: %w", cat, i, domain.ErrInvalidConfig),
				}
			}

			pattern := `(?:^|[^\pL\pN])` + regexp.QuoteMeta(raw)
			if whole {
				pattern += `(?:$|[^\pL\pN])`
			}
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, &domain.OpError{
					Op:   "classify.compile",
					Kind: domain.KindInvalidConfig,
					Err:  fmt.Errorf("vocabulary.%s[%d]: %w", cat, i, err),
				}
			}
			a.vocab[cat] = append(a.vocab[cat], matcher{word: raw, re: re})
		}
	}
	return a, nil
}

// Analyze extracts features. It is pure: the same text always yields the same Features.
func (a *Analyzer) Analyze(text string) Features {
	lower := strings.ToLower(normalize(text))

	f := Features{
		Text: text,
		Hits: map[domain.Category][]string{},
	}

	for _, m := range coordRe.FindAllStringSubmatch(lower, -1) {
		x, errX := strconv.ParseFloat(m[2], 64)
		y, errY := strconv.ParseFloat(m[3], 64)
		if errX != nil || errY != nil {
			continue
		}
		f.Coordinates = append(f.Coordinates, Point{Label: strings.ToUpper(m[1]), X: x, Y: y})
	}

	// Numbers inside coordinate pairs are positions, not data.
	rest := coordRe.ReplaceAllString(lower, " ")
	f.Numbers = len(numberRe.FindAllString(rest, -1))
	for _, run := range dataListRe.FindAllString(rest, -1) {
		if n := len(numberRe.FindAllString(run, -1)); n > f.DataList {
			f.DataList = n
		}
	}

	// Resume after each trimmed equation so "f(x) = ... and g(x) = ..." yields both.
	for pos := 0; pos < len(lower); {
		loc := functionRe.FindStringSubmatchIndex(lower[pos:])
		if loc == nil {
			break
		}
		eq := trimEquation(lower[pos+loc[2] : pos+loc[3]])
		if !labelsQuantity(lower[:pos+loc[2]], eq) {
			f.Equations = append(f.Equations, eq)
		}
		pos += loc[2] + max(len(eq), 1)
	}
	f.FunctionNotation = len(f.Equations) > 0
	f.ReferenceLine = referenceRe.MatchString(lower)

	f.Inequality = inequalityRe.MatchString(lower)
	f.Degrees = degreesRe.MatchString(lower)
	f.Measurement = measurementRe.MatchString(lower)

	for cat, ms := range a.vocab {
		for _, m := range ms {
			if m.re.MatchString(lower) {
				f.Hits[cat] = append(f.Hits[cat], m.word)
			}
		}
		if hits := f.Hits[cat]; len(hits) > 1 {
			sort.Strings(hits)
		}
	}

	return f
}

// equationStops end an equation's right-hand side where the sentence moves on.
var equationStops = []string{" and ", " with ", " for ", " from ", " on ", " between ", " to ", " where "}

func trimEquation(eq string) string {
	i := strings.Index(eq, "=")
	if i < 0 {
		return strings.TrimSpace(eq)
	}
	rhs := eq[i+1:]
	for _, stop := range equationStops {
		if j := strings.Index(rhs, stop); j >= 0 {
			rhs = rhs[:j]
		}
	}
	return strings.TrimSpace(eq[:i+1] + rhs)
}

// labelsQuantity reports whether eq names a measured quantity ("angle y = 50°",
// "y = 4 cm") rather than a function. A bare constant only counts as a label
// when the words just before it name an angle or a side; "graph y = 3" stays a line.
func labelsQuantity(before, eq string) bool {
	i := strings.Index(eq, "=")
	if i < 0 {
		return false
	}
	rhs := strings.TrimSpace(eq[i+1:])
	if degreesRe.MatchString(rhs) || measurementRe.MatchString(rhs) {
		return true
	}
	return constantRe.MatchString(rhs) && quantityRe.MatchString(before)
}

// normalize folds typographic variants so patterns stay simple.
func normalize(s string) string {
	r := strings.NewReplacer(
		"−", "-", // minus sign
		"–", "-",
		"’", "'",
		"\u00a0", " ",
		"²", "^2",
		"³", "^3",
	)
	return r.Replace(s)
}
