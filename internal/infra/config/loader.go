package config

import (
	"os"

	"github.com/aalvaropc/diagroute/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace marker and configuration file.
const FileName = "diagroute.yaml"

// Load reads a config file and applies it over domain.DefaultConfig.
// On error the defaults are returned alongside it.
func Load(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var dto YAMLFile
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return cfg, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return MapConfig(path, dto.Diagroute, cfg)
}
