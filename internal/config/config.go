// Package config loads fxrelay's settings.
//
// Precedence, highest first: command-line flags (applied by the cli
// package), environment variables (after loading an optional .env file),
// the YAML config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/fxrelay/internal/relay"
)

// Environment variables read by Load.
const (
	EnvToken    = "FXRELAY_TOKEN"
	EnvAPIURL   = "FXRELAY_API_URL"
	EnvDryRun   = "FXRELAY_DRY_RUN"
	EnvLogLevel = "FXRELAY_LOG_LEVEL"
	EnvLogFile  = "FXRELAY_LOG_FILE"
	EnvJournal  = "FXRELAY_JOURNAL"
)

// Config is the resolved configuration.
type Config struct {
	APIURL    string        `yaml:"api_url"`
	Token     string        `yaml:"-"`
	DryRun    bool          `yaml:"dry_run"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	RateBurst int           `yaml:"rate_burst"`
	LogFile   string        `yaml:"log_file"`
	LogLevel  string        `yaml:"log_level"`
	Journal   string        `yaml:"journal"`
	Columns   []string      `yaml:"columns"`

	// Source is the config file that was read, empty if none.
	Source string `yaml:"-"`
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// Path of the YAML file. When empty, DefaultPath() is tried and a
	// missing file is not an error.
	Path string

	// EnvFile is an optional dotenv file. Defaults to ".env"; a missing
	// file is not an error.
	EnvFile string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	state := stateDir()
	return Config{
		APIURL:    relay.DefaultBaseURL,
		Timeout:   15 * time.Second,
		RateLimit: 5,
		RateBurst: 5,
		LogFile:   filepath.Join(state, "fxrelay.log"),
		LogLevel:  "info",
		Journal:   filepath.Join(state, "journal.db"),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/fxrelay/config.yaml (or the
// platform equivalent).
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fxrelay", "config.yaml")
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "fxrelay")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fxrelay")
	}
	return filepath.Join(home, ".local", "state", "fxrelay")
}

// Load resolves the configuration from defaults, file and environment.
func Load(opts LoadOptions) (Config, error) {
	cfg := Defaults()

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				err = nil
			}
			if err != nil {
				return Config{}, err
			}
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", envFile, err)
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.mergeEnv(env); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if raw == nil {
		c.Source = path
		return nil
	}
	if err := validateFile(raw); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Source = path
	return nil
}

func (c *Config) mergeEnv(env func(string) (string, bool)) error {
	if v, ok := env(EnvToken); ok {
		c.Token = strings.TrimSpace(v)
	}
	if v, ok := env(EnvAPIURL); ok && v != "" {
		c.APIURL = v
	}
	if v, ok := env(EnvDryRun); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDryRun, err)
		}
		c.DryRun = b
	}
	if v, ok := env(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := env(EnvLogFile); ok {
		c.LogFile = v
	}
	if v, ok := env(EnvJournal); ok {
		c.Journal = v
	}
	return nil
}

// Validate checks values that can also arrive from the environment or flags.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api_url %q must start with http:// or https://", c.APIURL)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q must be one of debug, info, warn, error", c.LogLevel)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// RequireToken returns an error naming the variable to set when no API
// token is configured.
func (c Config) RequireToken() error {
	if c.Token == "" {
		return fmt.Errorf("no API token: set %s in the environment or a .env file", EnvToken)
	}
	return nil
}
