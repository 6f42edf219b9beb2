package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the ambient configuration read once at startup. It tunes
// defaults only; nothing here is session state.
type Config struct {
	// IgnoreThresholdSeconds discards timed sessions shorter than this.
	IgnoreThresholdSeconds int `yaml:"ignore_threshold_seconds"`
	// ExportDir receives CSV exports; empty means the home directory.
	ExportDir string `yaml:"export_dir"`
	// DefaultMinutes pre-fills the duration field of the add form.
	DefaultMinutes int `yaml:"default_minutes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		IgnoreThresholdSeconds: 5,
		DefaultMinutes:         5,
	}
}

// DefaultPath returns <user config dir>/puntuale/config.yaml.
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "puntuale", "config.yaml"), nil
}

// Load reads the configuration at path. A missing file is not an error:
// the defaults apply.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.IgnoreThresholdSeconds < 0 {
		c.IgnoreThresholdSeconds = 0
	}
	if c.DefaultMinutes <= 0 {
		c.DefaultMinutes = Default().DefaultMinutes
	}
	return c, nil
}

// ResolveExportDir returns the directory exports land in.
func (c Config) ResolveExportDir() string {
	if c.ExportDir != "" {
		return c.ExportDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
