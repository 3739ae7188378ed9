// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

// LogFileName is the log file created under the data directory when
// log.file is not set.
const LogFileName = "dft.log"

// Config holds all dft configuration.
type Config struct {
	DataDir  string   `yaml:"data_dir"`
	Feedback Feedback `yaml:"feedback"`
	Log      Log      `yaml:"log"`
}

// Feedback holds settings for the transient status line.
type Feedback struct {
	Duration time.Duration `yaml:"duration"`
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `yaml:"format"` // "text" | "json" | "logfmt"
	File   string `yaml:"file"`   // empty means <data_dir>/dft.log
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir: "~/.dft",
		Feedback: Feedback{
			Duration: 2 * time.Second,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// UserConfigPath returns the per-user config file location.
func UserConfigPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("config: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "dft", "config.yaml"), nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files and empty paths are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: data_dir cannot be empty")
	}
	if c.Feedback.Duration <= 0 {
		return fmt.Errorf("config: feedback.duration must be positive, got %v", c.Feedback.Duration)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("config: log.format must be one of text, json, logfmt, got %q", c.Log.Format)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: DFT_DATA_DIR, DFT_FEEDBACK_DURATION, DFT_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DFT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("DFT_FEEDBACK_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid DFT_FEEDBACK_DURATION %q: %w", v, err)
		}
		c.Feedback.Duration = d
	}
	if v := os.Getenv("DFT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// ExpandPaths replaces a leading ~ in data_dir and log.file with the home
// directory and fills in the default log file.
func (c *Config) ExpandPaths() error {
	dir, err := homedir.Expand(c.DataDir)
	if err != nil {
		return fmt.Errorf("config: expanding data_dir: %w", err)
	}
	c.DataDir = dir

	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.DataDir, LogFileName)
		return nil
	}
	file, err := homedir.Expand(c.Log.File)
	if err != nil {
		return fmt.Errorf("config: expanding log.file: %w", err)
	}
	c.Log.File = file
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	DataDir  *string      `yaml:"data_dir"`
	Feedback *rawFeedback `yaml:"feedback"`
	Log      *rawLog      `yaml:"log"`
}

type rawFeedback struct {
	Duration *time.Duration `yaml:"duration"`
}

type rawLog struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
	File   *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.DataDir != nil {
		c.DataDir = *layer.DataDir
	}
	if layer.Feedback != nil && layer.Feedback.Duration != nil {
		c.Feedback.Duration = *layer.Feedback.Duration
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.Format != nil {
			c.Log.Format = *layer.Log.Format
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
	}
}
