package yamlrulebook

import (
	_ "embed"
	"os"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/ports"
	"gopkg.in/yaml.v3"
)

//go:embed default_rulebook.yaml
var defaultRulebookYAML []byte

const builtinPath = "<builtin>"

// DefaultYAML returns the embedded rulebook source, used when initializing a workspace.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultRulebookYAML))
	copy(out, defaultRulebookYAML)
	return out
}

// Default parses the embedded rulebook.
func Default() (domain.Rulebook, error) {
	return parse(builtinPath, defaultRulebookYAML, domain.Rulebook{})
}

type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

var _ ports.RulebookLoader = (*Loader)(nil)

// LoadRulebook reads a rulebook file and layers it over the embedded default.
// An empty path returns the embedded default.
func (l *Loader) LoadRulebook(path string) (domain.Rulebook, error) {
	base, err := Default()
	if err != nil {
		return domain.Rulebook{}, err
	}
	if strings.TrimSpace(path) == "" {
		return base, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Rulebook{}, &domain.OpError{
			Op:   "yamlrulebook.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}
	return parse(path, b, base)
}

func parse(path string, b []byte, base domain.Rulebook) (domain.Rulebook, error) {
	var yr yamlRulebook
	if err := yaml.Unmarshal(b, &yr); err != nil {
		return domain.Rulebook{}, &domain.OpError{
			Op:   "yamlrulebook.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return mapRulebook(path, yr, base)
}
