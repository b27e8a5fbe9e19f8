// Package config loads the converter settings from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xxxbrian/geosite2abp/internal/fetcher"
	"github.com/xxxbrian/geosite2abp/internal/source"
)

// DefaultOutput is the file written when no output path is given.
const DefaultOutput = "geosite2adb.txt"

// Config holds every tunable of the convert and serve commands.
type Config struct {
	Output            string        `yaml:"output"`
	Timeout           time.Duration `yaml:"timeout"`
	UserAgent         string        `yaml:"user_agent"`
	KnownTemplate     string        `yaml:"known_template"`
	CommunityTemplate string        `yaml:"community_template"`
	Known             []string      `yaml:"known"`
	SourceDir         string        `yaml:"source_dir"`
	CachePath         string        `yaml:"cache_path"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	Jobs              int           `yaml:"jobs"`
	Punycode          bool          `yaml:"punycode"`
	LogLevel          string        `yaml:"log_level"`

	Server struct {
		Listen    string        `yaml:"listen"`
		ResultTTL time.Duration `yaml:"result_ttl"`
	} `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		Output:            DefaultOutput,
		Timeout:           fetcher.DefaultTimeout,
		UserAgent:         fetcher.DefaultUserAgent,
		KnownTemplate:     source.KnownTemplate,
		CommunityTemplate: source.CommunityTemplate,
		Known:             append([]string(nil), source.DefaultKnown...),
		CacheTTL:          30 * time.Minute,
		Jobs:              1,
		LogLevel:          "info",
	}
	cfg.Server.Listen = ":8080"
	cfg.Server.ResultTTL = time.Hour
	return cfg
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults restores defaults for keys that were present but empty.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Output == "" {
		c.Output = d.Output
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.KnownTemplate == "" {
		c.KnownTemplate = d.KnownTemplate
	}
	if c.CommunityTemplate == "" {
		c.CommunityTemplate = d.CommunityTemplate
	}
	if c.Known == nil {
		c.Known = d.Known
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.Jobs == 0 {
		c.Jobs = d.Jobs
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Server.Listen == "" {
		c.Server.Listen = d.Server.Listen
	}
	if c.Server.ResultTTL == 0 {
		c.Server.ResultTTL = d.Server.ResultTTL
	}
}

// Validate rejects settings the commands cannot run with.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1: %d", c.Jobs)
	}
	return nil
}

// Catalog builds the template catalog described by the config.
func (c *Config) Catalog() *source.Catalog {
	return source.NewCatalog(c.Known, c.KnownTemplate, c.CommunityTemplate)
}
