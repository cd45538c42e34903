// Package assert evaluates suite expectations against a classification.
package assert

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/aalvaropc/diagroute/internal/domain"
)

func Tool(expected, got domain.Tool) domain.AssertionResult {
	if got == expected {
		return domain.AssertionResult{
			Name:    "tool",
			Passed:  true,
			Message: fmt.Sprintf("tool %s", got),
		}
	}
	return domain.AssertionResult{
		Name:    "tool",
		Passed:  false,
		Message: fmt.Sprintf("expected tool %s, got %s", expected, got),
	}
}

func Confidence(expected, got domain.Confidence) domain.AssertionResult {
	if got == expected {
		return domain.AssertionResult{
			Name:    "confidence",
			Passed:  true,
			Message: fmt.Sprintf("confidence %s", got),
		}
	}
	return domain.AssertionResult{
		Name:    "confidence",
		Passed:  false,
		Message: fmt.Sprintf("expected confidence %s, got %s", expected, got),
	}
}

func AlternativeTool(expected domain.Tool, got *domain.Tool) domain.AssertionResult {
	if got != nil && *got == expected {
		return domain.AssertionResult{
			Name:    "alternative_tool",
			Passed:  true,
			Message: fmt.Sprintf("alternative_tool %s", expected),
		}
	}
	gotS := "null"
	if got != nil {
		gotS = string(*got)
	}
	return domain.AssertionResult{
		Name:    "alternative_tool",
		Passed:  false,
		Message: fmt.Sprintf("expected alternative_tool %s, got %s", expected, gotS),
	}
}

// Evaluate applies the expectations against c. Field checks come first in
// tool, confidence, alternative_tool order, then JSONPath checks sorted by expression.
func Evaluate(exp domain.Expectations, c domain.Classification) []domain.AssertionResult {
	var out []domain.AssertionResult

	if exp.Tool != nil {
		out = append(out, Tool(*exp.Tool, c.Tool))
	}
	if exp.Confidence != nil {
		out = append(out, Confidence(*exp.Confidence, c.Confidence))
	}
	if exp.AlternativeTool != nil {
		out = append(out, AlternativeTool(*exp.AlternativeTool, c.AlternativeTool))
	}

	if len(exp.JSONPath) == 0 {
		return out
	}

	exprs := make([]string, 0, len(exp.JSONPath))
	for expr := range exp.JSONPath {
		exprs = append(exprs, expr)
	}
	sort.Strings(exprs)

	doc, err := toDocument(c)
	if err != nil {
		for _, expr := range exprs {
			out = append(out, jsonPathChecks(expr, exp.JSONPath[expr], nil, false,
				fmt.Errorf("classification is not representable as JSON: %v", err))...)
		}
		return out
	}

	for _, expr := range exprs {
		eval, parseErr := jsonpath.New(expr)
		if parseErr != nil {
			out = append(out, jsonPathChecks(expr, exp.JSONPath[expr], nil, false,
				fmt.Errorf("invalid jsonpath: %v", parseErr))...)
			continue
		}
		val, getErr := eval(context.Background(), doc)
		// A lookup error on a valid expression means the key is absent.
		out = append(out, jsonPathChecks(expr, exp.JSONPath[expr], val, getErr != nil, nil)...)
	}

	return out
}

// jsonPathChecks runs every set check. missing marks an absent value; fatal
// fails every check regardless of the value.
func jsonPathChecks(expr string, a domain.JSONPathAssertion, val any, missing bool, fatal error) []domain.AssertionResult {
	var getErr error
	switch {
	case fatal != nil:
		getErr = fatal
	case missing:
		getErr = fmt.Errorf("no value")
	}

	var out []domain.AssertionResult
	if a.Exists != nil {
		out = append(out, checkExists(expr, *a.Exists, val, missing, fatal))
	}
	if a.Eq != nil {
		out = append(out, checkEq(expr, val, getErr, *a.Eq))
	}
	if a.Contains != nil {
		out = append(out, checkContains(expr, val, getErr, *a.Contains))
	}
	if a.Matches != nil {
		out = append(out, checkMatches(expr, val, getErr, *a.Matches))
	}
	return out
}

func checkExists(expr string, want bool, val any, missing bool, fatal error) domain.AssertionResult {
	if fatal != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, fatal),
		}
	}
	present := !missing && !isEmptyJSONPathValue(val)
	switch {
	case want && present:
		return domain.AssertionResult{
			Name:    "jsonpath.exists",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q exists", expr),
		}
	case want:
		return domain.AssertionResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: expected value to exist, got empty", expr),
		}
	case present:
		return domain.AssertionResult{
			Name:    "jsonpath.exists",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: expected no value, got %v", expr, val),
		}
	default:
		return domain.AssertionResult{
			Name:    "jsonpath.exists",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q is absent", expr),
		}
	}
}

func checkEq(expr string, val any, getErr error, expected string) domain.AssertionResult {
	s, err := resolveString(val, getErr)
	if err != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.eq",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	if s == expected {
		return domain.AssertionResult{
			Name:    "jsonpath.eq",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q eq %q", expr, expected),
		}
	}
	return domain.AssertionResult{
		Name:    "jsonpath.eq",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: expected %q, got %q", expr, expected, s),
	}
}

func checkContains(expr string, val any, getErr error, sub string) domain.AssertionResult {
	s, err := resolveString(val, getErr)
	if err != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.contains",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	if strings.Contains(s, sub) {
		return domain.AssertionResult{
			Name:    "jsonpath.contains",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q contains %q", expr, sub),
		}
	}
	return domain.AssertionResult{
		Name:    "jsonpath.contains",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: %q does not contain %q", expr, s, sub),
	}
}

func checkMatches(expr string, val any, getErr error, pattern string) domain.AssertionResult {
	s, err := resolveString(val, getErr)
	if err != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.matches",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: %v", expr, err),
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return domain.AssertionResult{
			Name:    "jsonpath.matches",
			Passed:  false,
			Message: fmt.Sprintf("jsonpath %q: invalid regex %q: %v", expr, pattern, err),
		}
	}
	if re.MatchString(s) {
		return domain.AssertionResult{
			Name:    "jsonpath.matches",
			Passed:  true,
			Message: fmt.Sprintf("jsonpath %q matches %q", expr, pattern),
		}
	}
	return domain.AssertionResult{
		Name:    "jsonpath.matches",
		Passed:  false,
		Message: fmt.Sprintf("jsonpath %q: %q does not match %q", expr, s, pattern),
	}
}

func resolveString(val any, getErr error) (string, error) {
	if getErr != nil {
		return "", getErr
	}
	return jsonPathToString(val)
}

func jsonPathToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case nil:
		return "", fmt.Errorf("value is null")
	default:
		return fmt.Sprint(v), nil
	}
}

// toDocument round-trips c through JSON so paths address the wire field names.
func toDocument(c domain.Classification) (any, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func isEmptyJSONPathValue(v any) bool {
	if v == nil {
		return true
	}

	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}
