// Package config loads tool configuration from TOML or YAML files, layered
// over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig captures configuration for paths, search behavior, tokenizer
// dispatch, and the HTTP server.
type AppConfig struct {
	Paths      PathsConfig      `toml:"paths" yaml:"paths"`
	Search     SearchConfig     `toml:"search" yaml:"search"`
	Tokenizers TokenizersConfig `toml:"tokenizers" yaml:"tokenizers"`
	Server     ServerConfig     `toml:"server" yaml:"server"`
	Logging    LoggingConfig    `toml:"logging" yaml:"logging"`
	Metrics    MetricsConfig    `toml:"metrics" yaml:"metrics"`
}

// PathsConfig configures the on-disk layout.
type PathsConfig struct {
	IndexFile  string `toml:"index_file" yaml:"index_file"`
	CorpusRoot string `toml:"corpus_root" yaml:"corpus_root"`
}

// SearchConfig provides search defaults.
type SearchConfig struct {
	DefaultCount int `toml:"default_count" yaml:"default_count"`
}

// TokenizersConfig overrides the extension-to-tokenizer table. Keys are file
// extensions, values are tokenizer variant names; an empty value removes the
// extension from the table.
type TokenizersConfig struct {
	Extensions map[string]string `toml:"extensions" yaml:"extensions"`
}

// ServerConfig controls network settings for the serve command.
type ServerConfig struct {
	Listen string `toml:"listen" yaml:"listen"`
}

// LoggingConfig toggles observability around requests.
type LoggingConfig struct {
	RequestLogs *bool `toml:"request_logs" yaml:"request_logs"`
}

// MetricsConfig enables counters/telemetry endpoints.
type MetricsConfig struct {
	Enabled *bool `toml:"enabled" yaml:"enabled"`
}

// DefaultConfig returns the baseline configuration used when no file is supplied.
func DefaultConfig() AppConfig {
	return AppConfig{
		Paths:   PathsConfig{IndexFile: "index.json", CorpusRoot: "."},
		Search:  SearchConfig{DefaultCount: 10},
		Server:  ServerConfig{Listen: ":8080"},
		Logging: LoggingConfig{RequestLogs: boolPtr(true)},
		Metrics: MetricsConfig{Enabled: boolPtr(true)},
	}
}

// Load reads the provided config path, merging it onto the defaults.
func Load(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	var fileCfg AppConfig
	switch ext {
	case ".toml":
		if err := toml.Unmarshal(content, &fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &fileCfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return AppConfig{}, errors.New("config file must be .toml, .yaml, or .yml")
	}

	return mergeConfig(cfg, fileCfg), nil
}

func mergeConfig(base, override AppConfig) AppConfig {
	if override.Paths.IndexFile != "" {
		base.Paths.IndexFile = override.Paths.IndexFile
	}
	if override.Paths.CorpusRoot != "" {
		base.Paths.CorpusRoot = override.Paths.CorpusRoot
	}

	if override.Search.DefaultCount != 0 {
		base.Search.DefaultCount = override.Search.DefaultCount
	}

	if len(override.Tokenizers.Extensions) != 0 {
		base.Tokenizers.Extensions = override.Tokenizers.Extensions
	}

	if override.Server.Listen != "" {
		base.Server.Listen = override.Server.Listen
	}

	if override.Logging.RequestLogs != nil {
		base.Logging.RequestLogs = override.Logging.RequestLogs
	}

	if override.Metrics.Enabled != nil {
		base.Metrics.Enabled = override.Metrics.Enabled
	}

	return base
}

func boolPtr(v bool) *bool {
	return &v
}
