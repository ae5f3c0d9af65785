// Package config loads widealign configuration from a TOML file.
//
// Configuration is optional: every field has a default, and command-line
// flags override file values. The file location defaults to
// $XDG_CONFIG_HOME/widealign/config.toml (or ~/.config/widealign/config.toml)
// and can be overridden with --config.
//
// # Example
//
//	[demo]
//	line_width = 72
//	column_padding = 2
//
//	[serve]
//	addr = ":8080"
//	line_width = 400
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"widealign/pkg/errors"
)

// appName is used for the XDG config directory.
const appName = "widealign"

// Demo configures the terminal document demo.
type Demo struct {
	// LineWidth is the width of one line of prose, in terminal cells.
	LineWidth float64 `toml:"line_width"`

	// ColumnPadding is the horizontal padding inside the content column,
	// in cells per side. The view width reported to the store excludes it.
	ColumnPadding int `toml:"column_padding"`
}

// Serve configures the HTTP measurement adapter.
type Serve struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// LineWidth is the line width, in pixels, reported to the store when
	// no observer has pushed one.
	LineWidth float64 `toml:"line_width"`
}

// Config is the top-level configuration.
type Config struct {
	Demo  Demo  `toml:"demo"`
	Serve Serve `toml:"serve"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Demo: Demo{
			LineWidth:     72,
			ColumnPadding: 2,
		},
		Serve: Serve{
			Addr:      ":8080",
			LineWidth: 400,
		},
	}
}

// Load reads the configuration from path. An empty path falls back to the
// default location; a missing file at the default location is not an error
// and yields Default(). A missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		path, err = defaultPath()
		if err != nil {
			return Default(), nil
		}
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "loading config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Demo.LineWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "demo.line_width must be positive, got %g", c.Demo.LineWidth)
	}
	if c.Demo.ColumnPadding < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "demo.column_padding must be non-negative, got %d", c.Demo.ColumnPadding)
	}
	if c.Serve.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "serve.addr must not be empty")
	}
	if c.Serve.LineWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "serve.line_width must be positive, got %g", c.Serve.LineWidth)
	}
	return nil
}

// defaultPath returns the XDG-standard config file location.
func defaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
