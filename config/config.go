// Package config loads the optional .vpcrecon YAML configuration file.
// Missing files fall back to defaults; flags override config values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// AWS holds session defaults.
type AWS struct {
	Profile       string   `yaml:"profile"`
	DefaultRegion string   `yaml:"default_region"`
	Regions       []string `yaml:"regions,omitempty"`
}

// Output holds report defaults.
type Output struct {
	Format    string `yaml:"format"`
	Directory string `yaml:"directory"`
}

// Cache holds response cache settings.
type Cache struct {
	Enabled   bool          `yaml:"enabled"`
	TTL       time.Duration `yaml:"ttl"`
	Directory string        `yaml:"directory"`
}

// Config is the full configuration document.
type Config struct {
	AWS    AWS    `yaml:"aws"`
	Output Output `yaml:"output"`
	Cache  Cache  `yaml:"cache"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		AWS: AWS{
			Profile:       "default",
			DefaultRegion: "us-east-1",
		},
		Output: Output{
			Format:    "markdown",
			Directory: "./reports",
		},
		Cache: Cache{
			Enabled:   true,
			TTL:       5 * time.Minute,
			Directory: "./.vpcrecon-cache",
		},
	}
}

// defaultPaths are probed in order when no explicit path is given.
func defaultPaths() []string {
	return []string{
		filepath.Join(".vpcrecon", "config.yaml"),
		filepath.Join(".vpcrecon", "config.yml"),
		".vpcrecon.yaml",
		".vpcrecon.yml",
	}
}

// Load reads configuration from path, or from the first default path that
// exists when path is empty. A missing file is not an error; a present but
// unparseable file is.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}

	for _, candidate := range defaultPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return loadFile(candidate)
		}
	}

	log.Debug().Msg("no config file found, using defaults")
	return Default(), nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("loaded configuration")
	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "markdown", "json", "yaml", "console":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}

// CachePath returns the bbolt file location under the cache directory.
func (c *Config) CachePath() string {
	return filepath.Join(c.Cache.Directory, "responses.db")
}
