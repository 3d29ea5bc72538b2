package strategyconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load returns the default configuration overlaid with the optional YAML
// strategy file. An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read strategy file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse strategy file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("strategy file invalid: %w", err)
	}

	return cfg, nil
}
