package cmd

// Editor configuration, loaded from a YAML file with sane defaults. Flags and
// the config file only steer the shell; buffers get their tab policy from the
// detected file type.

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ThemePath       string `yaml:"theme"`
	SystemClipboard bool   `yaml:"system_clipboard"`
	LogLevel        string `yaml:"log_level"`
	LogPath         string `yaml:"log_path"`
}

func defaultConfig() *Config {
	return &Config{
		SystemClipboard: true,
		LogLevel:        "warning",
		LogPath:         filepath.Join(os.TempDir(), "quill.log"),
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quill", "config.yaml")
}

// LoadConfig reads the YAML file over the defaults. A missing file is fine.
func LoadConfig(path string) *Config {
	cfg := defaultConfig()
	if path == "" {
		return cfg
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		logrus.Warnf("config file %s does not parse, using defaults: %v", path, err)
	}
	return cfg
}

// SetupLogging directs logs to the configured file; a TUI can't share its
// terminal with stderr.
func (c *Config) SetupLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logrus.SetLevel(level)

	if c.LogPath != "" {
		f, err := os.OpenFile(c.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			logrus.SetOutput(f)
			return
		}
	}
	logrus.SetOutput(os.Stderr)
}
