package fsworkspace

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
	"github.com/aalvaropc/diagroute/internal/infra/logger"
	"github.com/aalvaropc/diagroute/internal/infra/yamlrulebook"
	"github.com/aalvaropc/diagroute/internal/ports"
)

//go:embed templates
var templatesFS embed.FS

const rulebookFile = "rulebook.yaml"

type Initializer struct{}

func NewInitializer() *Initializer {
	return &Initializer{}
}

var _ ports.WorkspaceInitializer = (*Initializer)(nil)

// Init scaffolds a workspace. Existing files are kept unless force is set.
func (i *Initializer) Init(spec domain.WorkspaceSpec, force bool) error {
	root := filepath.Clean(spec.Root)
	if spec.Root == "" {
		root = "."
	}

	cfg := domain.DefaultConfig()
	dirs := []string{
		filepath.Join(root, cfg.Paths.SuitesDir),
		filepath.Join(root, cfg.Paths.RunsDir),
		logger.Dir(root),
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return initError(d, err)
		}
	}

	if err := ensureGitignore(root); err != nil {
		return initError(filepath.Join(root, ".gitignore"), err)
	}

	// The starter rulebook is the built-in one so users edit what actually runs.
	if err := writeFile(filepath.Join(root, rulebookFile), yamlrulebook.DefaultYAML(), force); err != nil {
		return err
	}

	return fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, "templates/")
		return writeFile(filepath.Join(root, filepath.FromSlash(rel)), b, force)
	})
}

func writeFile(dst string, b []byte, force bool) error {
	if !force {
		if _, statErr := os.Stat(dst); statErr == nil {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return initError(dst, err)
	}
	if err := os.WriteFile(dst, b, 0o644); err != nil {
		return initError(dst, err)
	}
	return nil
}

func initError(path string, err error) error {
	return &domain.OpError{
		Op:   "fsworkspace.init",
		Kind: domain.KindExecution,
		Path: path,
		Err:  err,
	}
}

func ensureGitignore(root string) error {
	const header = "# diagroute"
	entries := []string{
		"runs/",
		".diagroute/",
	}

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			present[trimmed] = true
		}
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	if !present[header] {
		out.WriteString(header + "\n")
	}
	for _, e := range missing {
		out.WriteString(e + "\n")
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
