package yamlsuite

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/ports"
	"gopkg.in/yaml.v3"
)

type Loader struct {
	suitesDir string
}

func NewLoader(opts ...Option) *Loader {
	l := &Loader{suitesDir: "suites"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Option func(*Loader)

func WithSuitesDir(dir string) Option {
	return func(l *Loader) { l.suitesDir = dir }
}

var _ ports.SuiteLoader = (*Loader)(nil)

func (l *Loader) LoadSuite(path string) (domain.Suite, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Suite{}, &domain.OpError{
			Op:   "yamlsuite.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var ys yamlSuite
	if err := yaml.Unmarshal(b, &ys); err != nil {
		return domain.Suite{}, &domain.OpError{
			Op:   "yamlsuite.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return mapAndValidate(path, ys)
}

// ListSuites returns the suites under root's suites directory, sorted by name.
// A suite without a name is listed under its file name.
func (l *Loader) ListSuites(root string) ([]domain.SuiteRef, error) {
	dir := l.suitesDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "yamlsuite.list",
			Kind: domain.KindNotFound,
			Path: dir,
			Err:  err,
		}
	}

	var refs []domain.SuiteRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		p := filepath.Join(dir, name)
		n, _ := readSuiteName(p)
		if strings.TrimSpace(n) == "" {
			n = strings.TrimSuffix(name, filepath.Ext(name))
		}

		refs = append(refs, domain.SuiteRef{Name: n, Path: p})
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

func readSuiteName(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var v struct {
		Name string `yaml:"name"`
	}
	if err := yaml.Unmarshal(b, &v); err != nil {
		return "", err
	}
	return v.Name, nil
}

type yamlSuite struct {
	Name  string            `yaml:"name"`
	Vars  map[string]string `yaml:"vars"`
	Cases []yamlCase        `yaml:"cases"`
}

type yamlCase struct {
	Name    string     `yaml:"name"`
	Request string     `yaml:"request"`
	Expect  yamlExpect `yaml:"expect"`
}

type yamlExpect struct {
	Tool            string `yaml:"tool"`
	Confidence      string `yaml:"confidence"`
	AlternativeTool string `yaml:"alternative_tool"`

	JSONPath map[string]yamlJSONPathAssertion `yaml:"jsonpath"`
}

type yamlJSONPathAssertion struct {
	Exists   *bool   `yaml:"exists"`
	Eq       *string `yaml:"eq"`
	Contains *string `yaml:"contains"`
	Matches  *string `yaml:"matches"`
}

func mapAndValidate(path string, ys yamlSuite) (domain.Suite, error) {
	if strings.TrimSpace(ys.Name) == "" {
		return domain.Suite{}, invalidField(path, "name", "suite name is required")
	}
	if len(ys.Cases) == 0 {
		return domain.Suite{}, invalidField(path, "cases", "at least one case is required")
	}

	s := domain.Suite{
		Name:  ys.Name,
		Vars:  domain.Vars(ys.Vars),
		Cases: make([]domain.Case, 0, len(ys.Cases)),
	}
	if s.Vars == nil {
		s.Vars = domain.Vars{}
	}

	seen := map[string]bool{}
	for i, c := range ys.Cases {
		fieldPrefix := fmt.Sprintf("cases[%d]", i)

		if strings.TrimSpace(c.Name) == "" {
			return domain.Suite{}, invalidField(path, fieldPrefix+".name", "case name is required")
		}
		if seen[c.Name] {
			return domain.Suite{}, invalidField(path, fieldPrefix+".name", fmt.Sprintf("duplicate case name %q", c.Name))
		}
		seen[c.Name] = true

		if strings.TrimSpace(c.Request) == "" {
			return domain.Suite{}, invalidField(path, fieldPrefix+".request", "case request is required")
		}

		exp, err := mapExpect(path, fieldPrefix+".expect", c.Expect)
		if err != nil {
			return domain.Suite{}, err
		}

		s.Cases = append(s.Cases, domain.Case{
			Name:    c.Name,
			Request: c.Request,
			Expect:  exp,
		})
	}

	return s, nil
}

func mapExpect(path, field string, ye yamlExpect) (domain.Expectations, error) {
	var exp domain.Expectations

	if strings.TrimSpace(ye.Tool) != "" {
		t, err := domain.ParseTool(ye.Tool)
		if err != nil {
			return exp, invalidField(path, field+".tool", err.Error())
		}
		exp.Tool = &t
	}
	if strings.TrimSpace(ye.Confidence) != "" {
		c, err := domain.ParseConfidence(ye.Confidence)
		if err != nil {
			return exp, invalidField(path, field+".confidence", err.Error())
		}
		exp.Confidence = &c
	}
	if strings.TrimSpace(ye.AlternativeTool) != "" {
		t, err := domain.ParseTool(ye.AlternativeTool)
		if err != nil {
			return exp, invalidField(path, field+".alternative_tool", err.Error())
		}
		exp.AlternativeTool = &t
	}

	exp.JSONPath = make(map[string]domain.JSONPathAssertion, len(ye.JSONPath))
	for expr, a := range ye.JSONPath {
		if strings.TrimSpace(expr) == "" {
			return exp, invalidField(path, field+".jsonpath", "empty expression")
		}
		exp.JSONPath[expr] = domain.JSONPathAssertion{
			Exists:   a.Exists,
			Eq:       a.Eq,
			Contains: a.Contains,
			Matches:  a.Matches,
		}
	}

	return exp, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlsuite.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
