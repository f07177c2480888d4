// Package config loads the project-level YAML config that tells lml which
// file to run and how each named container should be provisioned,
// decoded with goccy/go-yaml.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// ContainerConfig describes one named sidecar: which runtime image/binary
// starts it, which package manager (if any) installs its Dependencies
// before first use.
type ContainerConfig struct {
	Runtime        string `yaml:"runtime"`
	PackageManager string `yaml:"packageManager,omitempty"`
	// Dependencies is runtime-specific: a map of name→version-range for
	// npm/pip-style managers, or a plain list for managers that don't
	// version-pin. Decoded permissively since its shape varies by
	// PackageManager.
	Dependencies any `yaml:"dependencies,omitempty"`
}

// Config is the top-level project configuration: the entrypoint script
// and the set of containers it may reference in runtime-literal tags.
type Config struct {
	Entrypoint string                      `yaml:"entrypoint"`
	Containers map[string]ContainerConfig `yaml:"containers"`
}

// Load reads and decodes the YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Entrypoint == "" {
		return nil, fmt.Errorf("config %s: entrypoint is required", path)
	}
	return &cfg, nil
}

// ContainerNames returns the configured container names, in no
// particular order.
func (c *Config) ContainerNames() []string {
	names := make([]string, 0, len(c.Containers))
	for name := range c.Containers {
		names = append(names, name)
	}
	return names
}
