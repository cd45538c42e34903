package config

import (
	"fmt"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
)

// MapConfig applies y on top of base and validates the result.
func MapConfig(path string, y YAMLConfig, base domain.Config) (domain.Config, error) {
	cfg := base

	// A rulebook set to "" explicitly selects the embedded rulebook.
	if y.Defaults.Rulebook != nil {
		cfg.Defaults.Rulebook = strings.TrimSpace(*y.Defaults.Rulebook)
	}
	if f := strings.TrimSpace(y.Defaults.Format); f != "" {
		cfg.Defaults.Format = strings.ToLower(f)
	}
	if y.Paths.SuitesDir != "" {
		cfg.Paths.SuitesDir = y.Paths.SuitesDir
	}
	if y.Paths.RunsDir != "" {
		cfg.Paths.RunsDir = y.Paths.RunsDir
	}
	if y.Batch.Workers != nil {
		cfg.Batch.Workers = *y.Batch.Workers
	}
	if y.Store.TruncateRequests != nil {
		cfg.Store.TruncateRequests = *y.Store.TruncateRequests
	}

	switch cfg.Defaults.Format {
	case "pretty", "json":
	default:
		return base, invalidField(path, "diagroute.defaults.format", fmt.Sprintf("unsupported format %q (pretty|json)", cfg.Defaults.Format))
	}
	if cfg.Batch.Workers < 1 {
		return base, invalidField(path, "diagroute.batch.workers", "must be at least 1")
	}
	if cfg.Store.TruncateRequests < 0 {
		return base, invalidField(path, "diagroute.store.truncate_requests", "must not be negative")
	}

	return cfg, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
