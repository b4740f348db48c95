package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. TASKFLOW_API_URL
const EnvPrefix = "TASKFLOW"

// Config represents the application configuration
type Config struct {
	APIURL         string        `mapstructure:"api_url" yaml:"api_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	DataDir        string        `mapstructure:"data_dir" yaml:"data_dir"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		APIURL:         "http://localhost:8080/api",
		RequestTimeout: 15 * time.Second,
		LogLevel:       "info",
	}
}

// Load reads the config file at path (the default location when empty), then applies
// TASKFLOW_* environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	defaults := Default()
	v := viper.New()
	v.SetDefault("api_url", defaults.APIURL)
	v.SetDefault("request_timeout", defaults.RequestTimeout)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/taskflow/config.yaml, falling back to ~/.config
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "taskflow", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "taskflow", "config.yaml"), nil
}

// WriteDefault writes the default configuration to path, creating parent directories
func WriteDefault(path string) error {
	return Default().Save(path)
}

// Save writes the config as YAML to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// applyDefaults fills in values a file set to empty
func (c *Config) applyDefaults() {
	defaults := Default()
	if c.APIURL == "" {
		c.APIURL = defaults.APIURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}
