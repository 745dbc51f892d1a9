// Package config resolves the tool's configuration from an optional YAML
// file, LEANTUI_* environment overrides, and defaults, in that order of
// precedence from lowest to highest.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Feed modes.
const (
	ModeStdin     = "stdin"
	ModeWebsocket = "websocket"
	ModeExec      = "exec"
)

// FeedConfig selects where the engine's message stream comes from.
type FeedConfig struct {
	// Mode is one of stdin, websocket, or exec.
	Mode string `yaml:"mode"`
	// URL is the websocket endpoint, required in websocket mode.
	URL string `yaml:"url"`
	// Command is the engine command line, required in exec mode.
	Command []string `yaml:"command"`
}

// LogConfig controls the rotating diagnostic log file.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Level      string `yaml:"level"`
}

// DiagnosticsConfig controls where decode-failure artifacts land.
type DiagnosticsConfig struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Feed        FeedConfig        `yaml:"feed"`
	Log         LogConfig         `yaml:"log"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// Default is the stdin-fed configuration used when no file is given.
func Default() Config {
	return Config{
		Feed: FeedConfig{Mode: ModeStdin},
		Log: LogConfig{
			File:       "lean-tui.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Level:      "info",
		},
		Diagnostics: DiagnosticsConfig{Dir: "."},
	}
}

// Load reads the optional YAML file at path, applies environment overrides,
// and validates the result. An empty path means defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()

	path = strings.TrimSpace(path)
	if path != "" {
		blob, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(blob, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := envString("LEANTUI_FEED_MODE"); ok {
		cfg.Feed.Mode = v
	}
	if v, ok := envString("LEANTUI_FEED_URL"); ok {
		cfg.Feed.URL = v
	}
	if v, ok := envString("LEANTUI_LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v, ok := envString("LEANTUI_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := envInt("LEANTUI_LOG_MAX_SIZE_MB"); ok {
		cfg.Log.MaxSizeMB = v
	}
	if v, ok := envString("LEANTUI_DIAG_DIR"); ok {
		cfg.Diagnostics.Dir = v
	}
}

func envString(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func envInt(key string) (int, bool) {
	raw, ok := envString(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks feed mode coherence.
func (c Config) Validate() error {
	switch c.Feed.Mode {
	case ModeStdin:
	case ModeWebsocket:
		if strings.TrimSpace(c.Feed.URL) == "" {
			return fmt.Errorf("feed url is required in websocket mode")
		}
	case ModeExec:
		if len(c.Feed.Command) == 0 {
			return fmt.Errorf("feed command is required in exec mode")
		}
	default:
		return fmt.Errorf("unknown feed mode %q", c.Feed.Mode)
	}
	return nil
}
