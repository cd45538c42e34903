package template

import (
	"fmt"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
)

// RenderString replaces {{VAR}} placeholders with vars values.
// It returns an error if a variable is missing or a placeholder is malformed.
func RenderString(input string, vars map[string]string) (string, error) {
	if input == "" {
		return "", nil
	}

	var out strings.Builder
	err := walk(input, func(text, key string) error {
		out.WriteString(text)
		if key == "" {
			return nil
		}
		value, ok := vars[key]
		if !ok {
			return &domain.OpError{
				Op:   "template.render",
				Kind: domain.KindMissingVar,
				Err:  fmt.Errorf("%q: %w", key, domain.ErrMissingVar),
			}
		}
		out.WriteString(value)
		return nil
	})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Placeholders returns the distinct variable names referenced by input, in order of appearance.
func Placeholders(input string) ([]string, error) {
	var keys []string
	seen := map[string]bool{}
	err := walk(input, func(_, key string) error {
		if key != "" && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
		return nil
	})
	return keys, err
}

// walk calls fn with each literal run and the placeholder key that follows it
// (empty for the trailing literal).
func walk(input string, fn func(text, key string) error) error {
	rest := input
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			return fn(rest, "")
		}

		text := rest[:start]
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return malformed("unclosed template expression")
		}

		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return malformed("empty template expression")
		}

		if err := fn(text, key); err != nil {
			return err
		}
		rest = rest[end+2:]
	}
}

func malformed(msg string) error {
	return &domain.OpError{
		Op:   "template.render",
		Kind: domain.KindInvalidConfig,
		Err:  fmt.Errorf("%s: %w", msg, domain.ErrInvalidConfig),
	}
}
