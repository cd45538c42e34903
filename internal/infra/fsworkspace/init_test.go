package fsworkspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/infra/config"
	"github.com/aalvaropc/diagroute/internal/infra/yamlrulebook"
	"github.com/aalvaropc/diagroute/internal/infra/yamlsuite"
)

func TestInitializer_Init_CreatesWorkspaceFiles(t *testing.T) {
	tmp := t.TempDir()

	if err := NewInitializer().Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	assertFileExists(t, filepath.Join(tmp, "diagroute.yaml"))
	assertFileExists(t, filepath.Join(tmp, "rulebook.yaml"))
	assertFileExists(t, filepath.Join(tmp, "suites", "sample.yaml"))
	assertFileExists(t, filepath.Join(tmp, "runs"))
	assertFileExists(t, filepath.Join(tmp, ".diagroute", "logs"))
}

func TestInitializer_Init_TemplatesLoad(t *testing.T) {
	tmp := t.TempDir()
	if err := NewInitializer().Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	cfg, err := config.Load(filepath.Join(tmp, "diagroute.yaml"))
	if err != nil {
		t.Fatalf("scaffolded config does not load: %v", err)
	}
	if cfg != domain.DefaultConfig() {
		t.Fatalf("expected scaffolded config to match defaults, got %+v", cfg)
	}

	if _, err := yamlrulebook.NewLoader().LoadRulebook(filepath.Join(tmp, "rulebook.yaml")); err != nil {
		t.Fatalf("scaffolded rulebook does not load: %v", err)
	}

	s, err := yamlsuite.NewLoader().LoadSuite(filepath.Join(tmp, "suites", "sample.yaml"))
	if err != nil {
		t.Fatalf("scaffolded suite does not load: %v", err)
	}
	if len(s.Cases) == 0 {
		t.Fatalf("expected sample cases")
	}
}

func TestInitializer_Init_SkipsExistingFilesUnlessForce(t *testing.T) {
	tmp := t.TempDir()

	cfgPath := filepath.Join(tmp, "diagroute.yaml")
	if err := os.WriteFile(cfgPath, []byte("custom\n"), 0o644); err != nil {
		t.Fatalf("write existing diagroute.yaml: %v", err)
	}

	i := NewInitializer()

	if err := i.Init(domain.WorkspaceSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init (force=false) error: %v", err)
	}

	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read diagroute.yaml: %v", err)
	}
	if string(b) != "custom\n" {
		t.Fatalf("expected diagroute.yaml preserved, got %q", string(b))
	}

	if err := i.Init(domain.WorkspaceSpec{Root: tmp}, true); err != nil {
		t.Fatalf("Init (force=true) error: %v", err)
	}

	b, err = os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read diagroute.yaml after force: %v", err)
	}
	if !strings.Contains(string(b), "diagroute:") {
		t.Fatalf("expected diagroute.yaml overwritten with template, got %q", string(b))
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s, stat err=%v", path, err)
	}
}
