package domain

// Config represents the diagroute workspace configuration loaded from diagroute.yaml.
type Config struct {
	Defaults DefaultsConfig
	Paths    PathsConfig
	Batch    BatchConfig
	Store    StoreConfig
}

type DefaultsConfig struct {
	// Rulebook is a path relative to the workspace root; empty means the embedded rulebook.
	Rulebook string
	Format   string
}

type PathsConfig struct {
	SuitesDir string
	RunsDir   string
}

type BatchConfig struct {
	Workers int
}

type StoreConfig struct {
	// TruncateRequests caps request text stored in run artifacts (0 disables).
	TruncateRequests int
}

// WorkspaceSpec describes a workspace to initialize.
type WorkspaceSpec struct {
	Root string
}

// DefaultConfig provides sane defaults if diagroute.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Defaults: DefaultsConfig{
			Rulebook: "rulebook.yaml",
			Format:   "pretty",
		},
		Paths: PathsConfig{
			SuitesDir: "suites",
			RunsDir:   "runs",
		},
		Batch: BatchConfig{Workers: 4},
		Store: StoreConfig{TruncateRequests: 500},
	}
}
