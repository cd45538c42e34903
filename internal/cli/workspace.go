package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/infra/runstore"
	"github.com/aalvaropc/diagroute/internal/infra/workspacefinder"
	"github.com/aalvaropc/diagroute/internal/infra/yamlrulebook"
	"github.com/aalvaropc/diagroute/internal/infra/yamlsuite"
	"github.com/aalvaropc/diagroute/internal/ports"
	"github.com/aalvaropc/diagroute/internal/usecase/classify"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	suites ports.SuiteLoader

	rulebookPath string
	engine       *classify.Engine

	store ports.RunStore
}

func loadWorkspace(workspaceFlag, rulebookFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	rbPath := resolveRulebookPath(root, cfg, rulebookFlag)
	engine, err := newEngine(rbPath)
	if err != nil {
		return nil, err
	}

	return &workspaceCtx{
		root:         root,
		cfg:          cfg,
		suites:       yamlsuite.NewLoader(yamlsuite.WithSuitesDir(cfg.Paths.SuitesDir)),
		rulebookPath: rbPath,
		engine:       engine,
		store:        runstore.NewJSONStore(root, cfg, runstore.WithIndex(true)),
	}, nil
}

// loadEngine builds a classifier without requiring a workspace: an explicit
// --rulebook wins, then the workspace rulebook when one is found, then the
// embedded default.
func loadEngine(rulebookFlag string) (*classify.Engine, error) {
	if p := strings.TrimSpace(rulebookFlag); p != "" {
		return newEngine(p)
	}

	wd, err := os.Getwd()
	if err == nil {
		if root, ferr := workspacefinder.NewFinder().FindRoot(wd); ferr == nil {
			cfg, cerr := workspacefinder.LoadConfig(root)
			if cerr != nil {
				return nil, cerr
			}
			return newEngine(resolveRulebookPath(root, cfg, ""))
		}
	}
	return newEngine("")
}

func newEngine(rulebookPath string) (*classify.Engine, error) {
	var loader ports.RulebookLoader = yamlrulebook.NewLoader()
	rb, err := loader.LoadRulebook(rulebookPath)
	if err != nil {
		return nil, err
	}
	return classify.New(rb)
}

// resolveRulebookPath returns "" (embedded rulebook) when the configured
// workspace rulebook does not exist. An explicit flag is returned as given so
// a typo is reported instead of silently ignored.
func resolveRulebookPath(root string, cfg domain.Config, flag string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	p := strings.TrimSpace(cfg.Defaults.Rulebook)
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	if !fileExists(p) {
		return ""
	}
	return p
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	root, err := workspacefinder.NewFinder().FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `diagroute init`): %w", wd, err)
	}
	return root, nil
}

func resolveSuitePath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("suite is required (use --suite or -s)")
	}

	if looksLikePath(in) {
		p := in
		if !filepath.IsAbs(p) {
			p = filepath.Join(ws.root, p)
		}
		return filepath.Clean(p), nil
	}

	suitesDir := ws.cfg.Paths.SuitesDir
	if !filepath.IsAbs(suitesDir) {
		suitesDir = filepath.Join(ws.root, suitesDir)
	}

	if hasYAMLExt(in) {
		p := filepath.Join(suitesDir, in)
		if fileExists(p) {
			return p, nil
		}
	}

	for _, ext := range []string{".yaml", ".yml"} {
		if p := filepath.Join(suitesDir, in+ext); fileExists(p) {
			return p, nil
		}
	}

	// Last resort: match the suite's "name" field.
	refs, err := ws.suites.ListSuites(ws.root)
	if err == nil {
		for _, r := range refs {
			if strings.EqualFold(r.Name, in) {
				return r.Path, nil
			}
		}
	}

	return "", fmt.Errorf("suite %q not found in %q", in, suitesDir)
}

func looksLikePath(s string) bool {
	return strings.Contains(s, "/") || strings.Contains(s, string(filepath.Separator))
}

func hasYAMLExt(s string) bool {
	ext := strings.ToLower(filepath.Ext(s))
	return ext == ".yaml" || ext == ".yml"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
