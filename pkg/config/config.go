// Package config loads process configuration from .env files, the
// environment and an optional navermcp.yaml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/NERVsystems/navermcp/pkg/naver"
)

// ErrMissingCredentials is returned when the Naver client id or secret is unset.
var ErrMissingCredentials = errors.New("missing Naver API credentials")

// FileName is the base name of the optional configuration file.
const FileName = "navermcp"

// envParentLevels is how many parent directories of the working directory
// are searched for a .env file.
const envParentLevels = 3

// Config holds all application configuration.
type Config struct {
	Naver  NaverConfig  `mapstructure:"naver"`
	Server ServerConfig `mapstructure:"server"`
	API    APIConfig    `mapstructure:"api"`

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string `mapstructure:"-"`
}

type NaverConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	BaseURL      string `mapstructure:"base_url"`
}

type ServerConfig struct {
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	Debug                 bool   `mapstructure:"debug"`
	UseDummyDataWhenError bool   `mapstructure:"use_dummy_data_when_error"`
}

// APIConfig controls upstream calls. Timeout is in milliseconds. Retries is
// read for compatibility but no call is ever retried.
type APIConfig struct {
	Timeout int `mapstructure:"timeout"`
	Retries int `mapstructure:"retries"`
}

// envBindings maps configuration keys to their environment variables.
var envBindings = map[string]string{
	"naver.client_id":                  "NAVER_CLIENT_ID",
	"naver.client_secret":              "NAVER_CLIENT_SECRET",
	"naver.base_url":                   "NAVER_API_BASE_URL",
	"server.port":                      "PORT",
	"server.log_level":                 "LOG_LEVEL",
	"server.debug":                     "DEBUG",
	"server.use_dummy_data_when_error": "USE_DUMMY_DATA_WHEN_ERROR",
	"api.timeout":                      "API_TIMEOUT",
	"api.retries":                      "API_RETRIES",
}

// Load reads configuration for the current process. The first .env file
// found in the working directory, its parents or the executable's
// directory is loaded without overriding variables already set.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	var execDir string
	if exe, err := os.Executable(); err == nil {
		execDir = filepath.Dir(exe)
	}
	return load(cwd, execDir)
}

func load(cwd, execDir string) (*Config, error) {
	envFile := FindEnvFile(cwd, execDir)
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()

	// Defaults
	v.SetDefault("naver.client_id", "")
	v.SetDefault("naver.client_secret", "")
	v.SetDefault("naver.base_url", naver.DefaultBaseURL)
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.use_dummy_data_when_error", false)
	v.SetDefault("api.timeout", 5000)
	v.SetDefault("api.retries", 1)

	// Config file (optional)
	v.SetConfigName(FileName)
	v.AddConfigPath(cwd)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.EnvFile = envFile
	cfg.Naver.ClientID = strings.TrimSpace(cfg.Naver.ClientID)
	cfg.Naver.ClientSecret = strings.TrimSpace(cfg.Naver.ClientSecret)

	return &cfg, nil
}

// FindEnvFile returns the first .env file in cwd, up to three of its
// parents, or execDir. It returns "" when none exists.
func FindEnvFile(cwd, execDir string) string {
	dirs := make([]string, 0, envParentLevels+2)
	dir := cwd
	for i := 0; i <= envParentLevels; i++ {
		dirs = append(dirs, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if execDir != "" {
		dirs = append(dirs, execDir)
	}

	for _, d := range dirs {
		path := filepath.Join(d, ".env")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Validate checks that configuration fields are sane. Missing credentials
// are not a validation error; see RequireCredentials.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if _, ok := parseLevel(c.Server.LogLevel); !ok {
		errs = append(errs, fmt.Sprintf("server.log_level %q is not a known level", c.Server.LogLevel))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, "api.timeout must be positive")
	}
	if c.API.Retries < 0 {
		errs = append(errs, "api.retries must not be negative")
	}
	if c.Naver.BaseURL == "" {
		errs = append(errs, "naver.base_url is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// MissingCredentials lists the credential variables that are unset.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Naver.ClientID == "" {
		missing = append(missing, "NAVER_CLIENT_ID")
	}
	if c.Naver.ClientSecret == "" {
		missing = append(missing, "NAVER_CLIENT_SECRET")
	}
	return missing
}

// RequireCredentials returns ErrMissingCredentials naming the unset variables.
func (c *Config) RequireCredentials() error {
	if missing := c.MissingCredentials(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Provider returns the Naver client configuration.
func (c *Config) Provider() naver.Config {
	return naver.Config{
		ClientID:            c.Naver.ClientID,
		ClientSecret:        c.Naver.ClientSecret,
		BaseURL:             c.Naver.BaseURL,
		Timeout:             time.Duration(c.API.Timeout) * time.Millisecond,
		Retries:             c.API.Retries,
		UseDummyDataOnError: c.Server.UseDummyDataWhenError,
	}
}

// LogLevel returns the slog level. Debug forces slog.LevelDebug.
func (c *Config) LogLevel() slog.Level {
	if c.Server.Debug {
		return slog.LevelDebug
	}
	level, ok := parseLevel(c.Server.LogLevel)
	if !ok {
		return slog.LevelInfo
	}
	return level
}

// parseLevel accepts slog level names plus the npm-style names used by
// older deployments (verbose, silly, http).
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "verbose", "silly":
		return slog.LevelDebug, true
	case "", "info", "http":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
