// Package config loads the bitrec command's configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable consulted when no config path is
// given on the command line.
const EnvVar = "BITREC_CONFIG"

// Config holds defaults for the bitrec subcommands. Command-line flags
// override every field.
type Config struct {
	Schema         string `yaml:"schema"`
	Type           string `yaml:"type"`
	Builtin        string `yaml:"builtin"`
	Format         string `yaml:"format"`
	LogLevel       string `yaml:"log_level"`
	InCompression  string `yaml:"in_compression"`
	OutCompression string `yaml:"out_compression"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Format:         "yaml",
		LogLevel:       "info",
		InCompression:  "none",
		OutCompression: "none",
	}
}

// Load reads the config file at path, or at $BITREC_CONFIG when path is
// empty. With neither set it returns Default. Fields missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}

// ParseLevel parses debug, info, warn or error, case-insensitively. The
// empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}
