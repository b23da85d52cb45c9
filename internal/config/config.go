// Package config loads the blocknum configuration.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Name of the configuration file, looked up in the working directory and the
// home directory.
const (
	ConfigName = ".blocknum"
	FileName   = ConfigName + ".toml"
)

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"`
}

// RenderConfig configures document output.
type RenderConfig struct {
	// Extra classes of the block content wrapper of list items.
	BlockContentClass string `mapstructure:"block_content_class" toml:"block_content_class"`
	// Extra classes of the element holding the inline content of list items.
	InlineContentClass string `mapstructure:"inline_content_class" toml:"inline_content_class"`
	// Render consecutive Markdown list items without blank lines.
	TightLists bool `mapstructure:"tight_lists" toml:"tight_lists"`
}

// Config holds all runtime configuration.
// Values are populated from .blocknum.toml, BLOCKNUM_* env vars, and CLI flags.
type Config struct {
	Log    LogConfig    `mapstructure:"log" toml:"log"`
	Render RenderConfig `mapstructure:"render" toml:"render"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers the built-in defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("render.block_content_class", d.Render.BlockContentClass)
	v.SetDefault("render.inline_content_class", d.Render.InlineContentClass)
	v.SetDefault("render.tight_lists", d.Render.TightLists)
}

// Load reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Marshal serializes a configuration to TOML.
func Marshal(cfg Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config to TOML: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

// WriteFile writes a configuration file. An existing file is only replaced
// when force is set.
func WriteFile(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
