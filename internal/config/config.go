// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Catalog CatalogConfig `toml:"catalog"`
	Extract ExtractConfig `toml:"extract"`
	Convert ConvertConfig `toml:"convert"`
	History HistoryConfig `toml:"history"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// CatalogConfig locates the device catalog database.
type CatalogConfig struct {
	Path  string `toml:"path"`
	Table string `toml:"table"`
	// Snapshot copies the database to a temp dir before reading it.
	Snapshot bool `toml:"snapshot"`
}

type ExtractConfig struct {
	Output        string `toml:"output"`
	Overwrite     string `toml:"overwrite"`
	IgnoreMissing bool   `toml:"ignore_missing"`
	Workers       int    `toml:"workers"`
}

type ConvertConfig struct {
	Mode             string `toml:"mode"`
	FFmpeg           string `toml:"ffmpeg"`
	CompressionLevel int    `toml:"compression_level"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		Catalog: CatalogConfig{Table: "t_object", Snapshot: true},
		Extract: ExtractConfig{Overwrite: "prompt", Workers: 1},
		Convert: ConvertConfig{Mode: "flac", FFmpeg: "ffmpeg", CompressionLevel: 12},
		History: HistoryConfig{Enabled: true, Path: "./data/xappli.db"},
	}
}

// Load reads, parses, and validates the configuration file.
// Returns *ConfigError for missing environment variables or validation failures.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation. Unresolved variables are left verbatim.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	// Keys absent from the file keep their defaults.
	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, missing, nil
}

// applyDefaults fills fields explicitly set to empty values.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Catalog.Table == "" {
		c.Catalog.Table = d.Catalog.Table
	}
	if c.Extract.Overwrite == "" {
		c.Extract.Overwrite = d.Extract.Overwrite
	}
	if c.Extract.Workers == 0 {
		c.Extract.Workers = d.Extract.Workers
	}
	if c.Convert.Mode == "" {
		c.Convert.Mode = d.Convert.Mode
	}
	if c.Convert.FFmpeg == "" {
		c.Convert.FFmpeg = d.Convert.FFmpeg
	}
	if c.History.Path == "" {
		c.History.Path = d.History.Path
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default}, and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars expands environment references in content. Unresolved
// references are left unchanged and reported in missing; a ${VAR:?msg}
// reference reports "VAR: msg".
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case ":-":
			if !ok || value == "" {
				return arg
			}
			return value
		case ":?":
			if !ok || value == "" {
				msg := strings.TrimSpace(arg)
				if msg == "" {
					msg = "required"
				}
				missing = append(missing, name+": "+msg)
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return out, missing
}
