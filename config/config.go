// Package config loads the service configuration from YAML or JSON
// files with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pun33th45/spotmate/core/dataset"
	"github.com/pun33th45/spotmate/core/forecast"
	"github.com/pun33th45/spotmate/core/metrics"
	"github.com/pun33th45/spotmate/core/train"
	"github.com/pun33th45/spotmate/infra/mqtt"
)

// DatasetConfig selects the dataset store backend.
type DatasetConfig struct {
	// Backend is "csv" or "sqlite".
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// SetDefaults applies fallback values.
func (c *DatasetConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "csv"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "data/occupancy.db"
		default:
			c.Path = "data/occupancy.csv"
		}
	}
}

// Validate checks the configuration.
func (c DatasetConfig) Validate() error {
	switch c.Backend {
	case "csv", "sqlite":
		return nil
	}
	return fmt.Errorf("unsupported dataset backend %q", c.Backend)
}

// ModelConfig locates the trained model artifact.
type ModelConfig struct {
	Path string `json:"path"`
}

// SetDefaults applies fallback values.
func (c *ModelConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "data/model.gob"
	}
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies fallback values.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Config is the root service configuration.
type Config struct {
	Dataset   DatasetConfig           `json:"dataset"`
	Model     ModelConfig             `json:"model"`
	Generator dataset.GeneratorConfig `json:"generator"`
	Training  train.Config            `json:"training"`
	Forecast  forecast.Config         `json:"forecast"`
	Metrics   metrics.Config          `json:"metrics"`
	MQTT      mqtt.Config             `json:"mqtt"`
	API       APIConfig               `json:"api"`
}

// SetDefaults applies fallback values to every section.
func (c *Config) SetDefaults() {
	c.Dataset.SetDefaults()
	c.Model.SetDefaults()
	c.Generator.SetDefaults()
	c.Training.SetDefaults()
	c.Forecast.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Dataset.Validate(); err != nil {
		return err
	}
	if err := c.Training.Validate(); err != nil {
		return err
	}
	if err := c.Forecast.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	return c.MQTT.Validate()
}

// Default returns a configuration with every default applied, used
// when no config file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// Load reads the configuration file, applies SM_ environment
// overrides, then defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides, e.g. SM_API__ADDR=:9000
	if err := k.Load(env.Provider("SM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sm_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
