package config

// YAMLFile is the on-disk shape of diagroute.yaml.
type YAMLFile struct {
	Diagroute YAMLConfig `yaml:"diagroute"`
}

type YAMLConfig struct {
	Defaults struct {
		Rulebook *string `yaml:"rulebook"`
		Format   string  `yaml:"format"`
	} `yaml:"defaults"`

	Paths struct {
		SuitesDir string `yaml:"suites_dir"`
		RunsDir   string `yaml:"runs_dir"`
	} `yaml:"paths"`

	Batch struct {
		Workers *int `yaml:"workers"`
	} `yaml:"batch"`

	Store struct {
		TruncateRequests *int `yaml:"truncate_requests"`
	} `yaml:"store"`
}
