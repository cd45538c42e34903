package usecase

import (
	"context"
	"fmt"
	"regexp"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aalvaropc/diagroute/internal/app/template"
	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/ports"
)

type ValidateSuite struct {
	suites ports.SuiteLoader
}

func NewValidateSuite(sl ports.SuiteLoader) *ValidateSuite {
	return &ValidateSuite{suites: sl}
}

// Execute checks a suite without classifying anything: every placeholder must
// resolve, every JSONPath and regex must compile, and the expected
// confidence/alternative pair must be one the classifier can produce.
func (uc *ValidateSuite) Execute(ctx context.Context, suitePath string, overrides domain.Vars) error {
	s, err := uc.suites.LoadSuite(suitePath)
	if err != nil {
		return err
	}

	vars := domain.Merge(s.Vars, overrides)

	for _, c := range s.Cases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := validateCase(c, vars); err != nil {
			return fmt.Errorf("case %q: %w", c.Name, err)
		}
	}
	return nil
}

func validateCase(c domain.Case, vars domain.Vars) error {
	keys, err := template.Placeholders(c.Request)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, ok := vars[k]; !ok {
			return &domain.OpError{
				Op:   "usecase.validate_suite",
				Kind: domain.KindMissingVar,
				Err:  fmt.Errorf("%q: %w", k, domain.ErrMissingVar),
			}
		}
	}

	exp := c.Expect
	if exp.Confidence != nil && exp.AlternativeTool != nil && !exp.Confidence.NeedsAlternative() {
		return invalidExpectation("alternative_tool cannot be expected with HIGH confidence")
	}
	if exp.Tool != nil && exp.AlternativeTool != nil && *exp.Tool == *exp.AlternativeTool {
		return invalidExpectation("alternative_tool must differ from tool")
	}

	for expr, a := range exp.JSONPath {
		if _, err := jsonpath.New(expr); err != nil {
			return invalidExpectation(fmt.Sprintf("jsonpath %q: %v", expr, err))
		}
		if a.Matches != nil {
			if _, err := regexp.Compile(*a.Matches); err != nil {
				return invalidExpectation(fmt.Sprintf("jsonpath %q: invalid regex %q: %v", expr, *a.Matches, err))
			}
		}
	}
	return nil
}

func invalidExpectation(msg string) error {
	return &domain.OpError{
		Op:   "usecase.validate_suite",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%s: %w", msg, domain.ErrInvalidConfig),
	}
}
