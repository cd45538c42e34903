package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aalvaropc/diagroute/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad_Overrides(t *testing.T) {
	p := writeConfig(t, `
diagroute:
  defaults:
    rulebook: rules/custom.yaml
    format: JSON
  paths:
    suites_dir: regress
  batch:
    workers: 8
  store:
    truncate_requests: 0
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Defaults.Rulebook != "rules/custom.yaml" {
		t.Fatalf("expected rulebook override, got %q", cfg.Defaults.Rulebook)
	}
	if cfg.Defaults.Format != "json" {
		t.Fatalf("expected format=json, got %q", cfg.Defaults.Format)
	}
	if cfg.Paths.SuitesDir != "regress" || cfg.Paths.RunsDir != "runs" {
		t.Fatalf("unexpected paths: %+v", cfg.Paths)
	}
	if cfg.Batch.Workers != 8 {
		t.Fatalf("expected workers=8, got %d", cfg.Batch.Workers)
	}
	if cfg.Store.TruncateRequests != 0 {
		t.Fatalf("expected truncation disabled, got %d", cfg.Store.TruncateRequests)
	}
}

func TestLoad_EmptyRulebookSelectsBuiltin(t *testing.T) {
	p := writeConfig(t, "diagroute:\n  defaults:\n    rulebook: \"\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Defaults.Rulebook != "" {
		t.Fatalf("expected empty rulebook, got %q", cfg.Defaults.Rulebook)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{name: "format", content: "diagroute:\n  defaults:\n    format: xml\n", field: "diagroute.defaults.format"},
		{name: "workers", content: "diagroute:\n  batch:\n    workers: 0\n", field: "diagroute.batch.workers"},
		{name: "truncate", content: "diagroute:\n  store:\n    truncate_requests: -1\n", field: "diagroute.store.truncate_requests"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !domain.IsKind(err, domain.KindInvalidConfig) {
				t.Fatalf("expected KindInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("expected %s in error, got %v", tt.field, err)
			}
		})
	}
}

func TestLoad_MissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got %v", err)
	}
	if cfg.Batch.Workers != domain.DefaultConfig().Batch.Workers {
		t.Fatalf("expected defaults alongside the error, got %+v", cfg)
	}
}
