// Package config loads user settings: built-in defaults, then the user
// config file, then JMAKE_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	AppName        = "jmake"
	ConfigFileName = "config.toml"
	EnvPrefix      = "JMAKE"
)

// Config holds the settings that are not part of a project.
type Config struct {
	Javac          string        `mapstructure:"javac"`
	Java           string        `mapstructure:"java"`
	CompileTimeout time.Duration `mapstructure:"compile_timeout"`
	RunTimeout     time.Duration `mapstructure:"run_timeout"`
	Jobs           int           `mapstructure:"jobs"`
	UI             string        `mapstructure:"ui"`
	MaxDiagnostics int           `mapstructure:"max_diagnostics"`
	MaxRootDepth   int           `mapstructure:"max_root_depth"`
	DebugPort      int           `mapstructure:"debug_port"`
	LogLevel       string        `mapstructure:"log_level"`
	Color          string        `mapstructure:"color"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Javac:          "javac",
		Java:           "java",
		CompileTimeout: 5 * time.Minute,
		RunTimeout:     0,
		Jobs:           0,
		UI:             "auto",
		MaxDiagnostics: 100,
		MaxRootDepth:   10,
		DebugPort:      5005,
		LogLevel:       "warn",
		Color:          "auto",
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFilePath selects a config file explicitly; it must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the per-user config directory.
	ConfigDirPath string
	// Flags are bound by key name: a changed flag named like a key wins over every other layer.
	Flags *pflag.FlagSet
}

// Dir returns the per-user config directory.
func Dir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
	}
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, AppName), nil
}

// Load resolves the configuration. The returned path is the config file that
// was read, or "" when only defaults, environment and flags were used.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("javac", defaults.Javac)
	v.SetDefault("java", defaults.Java)
	v.SetDefault("compile_timeout", defaults.CompileTimeout)
	v.SetDefault("run_timeout", defaults.RunTimeout)
	v.SetDefault("jobs", defaults.Jobs)
	v.SetDefault("ui", defaults.UI)
	v.SetDefault("max_diagnostics", defaults.MaxDiagnostics)
	v.SetDefault("max_root_depth", defaults.MaxRootDepth)
	v.SetDefault("debug_port", defaults.DebugPort)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("color", defaults.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	resolved := ""
	if opts.ConfigFilePath != "" {
		if _, err := os.Stat(opts.ConfigFilePath); err != nil {
			return nil, "", fmt.Errorf("config file not found: %w", err)
		}
		resolved = opts.ConfigFilePath
	} else {
		dir := opts.ConfigDirPath
		if dir == "" {
			d, err := Dir()
			if err != nil {
				return nil, "", err
			}
			dir = d
		}
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			resolved = candidate
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
	}
	if resolved != "" {
		v.SetConfigFile(resolved)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("%s: failed to read config: %w", resolved, err)
		}
	}

	if opts.Flags != nil {
		for _, key := range v.AllKeys() {
			name := strings.ReplaceAll(key, "_", "-")
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, "", fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		if resolved != "" {
			return nil, "", fmt.Errorf("%s: %w", resolved, err)
		}
		return nil, "", err
	}
	return &cfg, resolved, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Javac) == "" {
		errs = append(errs, errors.New("javac must not be empty"))
	}
	if strings.TrimSpace(c.Java) == "" {
		errs = append(errs, errors.New("java must not be empty"))
	}
	if c.CompileTimeout < 0 {
		errs = append(errs, fmt.Errorf("compile_timeout must not be negative, got %s", c.CompileTimeout))
	}
	if c.RunTimeout < 0 {
		errs = append(errs, fmt.Errorf("run_timeout must not be negative, got %s", c.RunTimeout))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}
	if c.MaxDiagnostics < 0 {
		errs = append(errs, fmt.Errorf("max_diagnostics must not be negative, got %d", c.MaxDiagnostics))
	}
	if c.MaxRootDepth < 1 {
		errs = append(errs, fmt.Errorf("max_root_depth must be at least 1, got %d", c.MaxRootDepth))
	}
	if c.DebugPort < 1 || c.DebugPort > 65535 {
		errs = append(errs, fmt.Errorf("debug_port must be in 1..65535, got %d", c.DebugPort))
	}
	if !oneOf(c.UI, "auto", "on", "off") {
		errs = append(errs, fmt.Errorf("ui must be auto, on or off, got %q", c.UI))
	}
	if !oneOf(c.Color, "auto", "on", "off") {
		errs = append(errs, fmt.Errorf("color must be auto, on or off, got %q", c.Color))
	}
	if !oneOf(strings.ToLower(c.LogLevel), "debug", "info", "warn", "error") {
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
