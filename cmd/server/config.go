package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type config struct {
	Addr         string `yaml:"addr"`
	CatalogFile  string `yaml:"catalog_file"`
	CatalogDB    string `yaml:"catalog_db"`
	SynonymsFile string `yaml:"synonyms_file"` // empty = bundled table
	WatchCatalog bool   `yaml:"watch_catalog"`
	BatchWorkers int    `yaml:"batch_workers"`
	MaxBatch     int    `yaml:"max_batch"`
	LogLevel     string `yaml:"log_level"`
}

// ApplyDefaults fills unset fields.
func (c *config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8420"
	}
	if c.BatchWorkers == 0 {
		c.BatchWorkers = 4
	}
	if c.MaxBatch == 0 {
		c.MaxBatch = 100
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the config after defaults are applied.
func (c *config) Validate() error {
	var errs []error
	if c.BatchWorkers < 1 {
		errs = append(errs, fmt.Errorf("batch_workers must be positive, got %d", c.BatchWorkers))
	}
	if c.MaxBatch < 1 {
		errs = append(errs, fmt.Errorf("max_batch must be positive, got %d", c.MaxBatch))
	}
	if c.WatchCatalog && c.CatalogFile == "" {
		errs = append(errs, errors.New("watch_catalog needs catalog_file"))
	}
	// A watched file must be the only catalog source.
	if c.WatchCatalog && c.CatalogDB != "" {
		errs = append(errs, errors.New("watch_catalog cannot be combined with catalog_db; import the file instead"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// loadConfig reads the YAML config at path. A missing file yields the
// defaults.
func loadConfig(path string) (config, error) {
	var cfg config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, def, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(name)
		if val == "" && hasDefault {
			val = def
		}
		return []byte(val)
	})
}
