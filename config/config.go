// Package config loads the fatnav YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no configuration file is named explicitly.
const DefaultPath = "fatnav.yaml"

// DefaultMaxDecompressedSize bounds the size of an unpacked compressed image.
const DefaultMaxDecompressedSize = 8 << 30

// Output formats for the info command.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds everything the binary can be configured with.
type Config struct {
	Image               string      `yaml:"image"`
	Partition           int         `yaml:"partition"`
	Offset              int64       `yaml:"offset"`
	MaxDecompressedSize int64       `yaml:"max_decompressed_size"`
	Log                 LogConfig   `yaml:"log"`
	Shell               ShellConfig `yaml:"shell"`
	Output              string      `yaml:"output"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ShellConfig controls the interactive shell.
type ShellConfig struct {
	Prompt string `yaml:"prompt"`
	// Banner prints the volume summary when the shell starts. nil means the default.
	Banner *bool `yaml:"banner"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	banner := true
	return Config{
		MaxDecompressedSize: DefaultMaxDecompressedSize,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Shell: ShellConfig{
			Prompt: "> ",
			Banner: &banner,
		},
		Output: OutputText,
	}
}

// Merge fills every unset field of c from defaults.
func (c Config) Merge(defaults Config) Config {
	result := c

	if result.Image == "" {
		result.Image = defaults.Image
	}
	if result.Partition == 0 {
		result.Partition = defaults.Partition
	}
	if result.Offset == 0 {
		result.Offset = defaults.Offset
	}
	if result.MaxDecompressedSize == 0 {
		result.MaxDecompressedSize = defaults.MaxDecompressedSize
	}
	if result.Log.Level == "" {
		result.Log.Level = defaults.Log.Level
	}
	if result.Log.Format == "" {
		result.Log.Format = defaults.Log.Format
	}
	if result.Shell.Prompt == "" {
		result.Shell.Prompt = defaults.Shell.Prompt
	}
	if result.Shell.Banner == nil {
		result.Shell.Banner = defaults.Shell.Banner
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}

	return result
}

// ShowBanner reports whether the shell prints its start banner.
func (c Config) ShowBanner() bool {
	return c.Shell.Banner == nil || *c.Shell.Banner
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Partition < 0 {
		return fmt.Errorf("partition must not be negative, got %d", c.Partition)
	}
	if c.Offset < 0 {
		return fmt.Errorf("offset must not be negative, got %d", c.Offset)
	}
	if c.MaxDecompressedSize <= 0 {
		return fmt.Errorf("max_decompressed_size must be positive, got %d", c.MaxDecompressedSize)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format %q: must be console or json", c.Log.Format)
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("invalid output %q: must be %s, %s or %s", c.Output, OutputText, OutputJSON, OutputYAML)
	}
	return nil
}

// Load reads the configuration at path from fs, merges it with DefaultConfig
// and validates the result. An empty path reads DefaultPath and tolerates its
// absence; a file named explicitly must exist.
func Load(fs afero.Fs, path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg = cfg.Merge(DefaultConfig())
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}
