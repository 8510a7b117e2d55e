package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NERVsystems/navermcp/pkg/naver"
)

// clearEnv unsets every bound variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

// nestedDir returns a directory three levels below a fresh temp dir so
// .env discovery never leaves the temp dir.
func nestedDir(t *testing.T) (root, dir string) {
	t.Helper()
	root = t.TempDir()
	dir = filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return root, dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	_, dir := nestedDir(t)

	cfg, err := load(dir, "")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.EnvFile != "" {
		t.Errorf("EnvFile = %q, want none", cfg.EnvFile)
	}
	if cfg.Naver.BaseURL != naver.DefaultBaseURL {
		t.Errorf("BaseURL = %q", cfg.Naver.BaseURL)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.LogLevel != "info" || cfg.Server.Debug || cfg.Server.UseDummyDataWhenError {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.API.Timeout != 5000 || cfg.API.Retries != 1 {
		t.Errorf("API = %+v", cfg.API)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if !errors.Is(cfg.RequireCredentials(), ErrMissingCredentials) {
		t.Error("RequireCredentials() did not report missing credentials")
	}
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	_, dir := nestedDir(t)

	t.Setenv("NAVER_CLIENT_ID", " id ")
	t.Setenv("NAVER_CLIENT_SECRET", "secret")
	t.Setenv("NAVER_API_BASE_URL", "http://localhost:9999")
	t.Setenv("PORT", "4000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DEBUG", "true")
	t.Setenv("USE_DUMMY_DATA_WHEN_ERROR", "true")
	t.Setenv("API_TIMEOUT", "1500")
	t.Setenv("API_RETRIES", "3")

	cfg, err := load(dir, "")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	want := naver.Config{
		ClientID:            "id",
		ClientSecret:        "secret",
		BaseURL:             "http://localhost:9999",
		Timeout:             1500 * time.Millisecond,
		Retries:             3,
		UseDummyDataOnError: true,
	}
	if got := cfg.Provider(); got != want {
		t.Errorf("Provider() = %+v, want %+v", got, want)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug when DEBUG is set", cfg.LogLevel())
	}
	if err := cfg.RequireCredentials(); err != nil {
		t.Errorf("RequireCredentials() error = %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	root, dir := nestedDir(t)

	writeFile(t, filepath.Join(root, ".env"), "NAVER_CLIENT_ID=from-file\nNAVER_CLIENT_SECRET=file-secret\nPORT=5000\n")
	t.Setenv("PORT", "4000")

	cfg, err := load(dir, "")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.EnvFile != filepath.Join(root, ".env") {
		t.Errorf("EnvFile = %q", cfg.EnvFile)
	}
	if cfg.Naver.ClientID != "from-file" || cfg.Naver.ClientSecret != "file-secret" {
		t.Errorf("Naver = %+v, want credentials from .env", cfg.Naver)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Port = %d, want the existing environment to win", cfg.Server.Port)
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	_, dir := nestedDir(t)

	writeFile(t, filepath.Join(dir, FileName+".yaml"), "server:\n  port: 8080\n  log_level: error\napi:\n  timeout: 2000\n")
	t.Setenv("API_TIMEOUT", "3000")

	cfg, err := load(dir, "")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080 from file", cfg.Server.Port)
	}
	if cfg.LogLevel() != slog.LevelError {
		t.Errorf("LogLevel() = %v, want error", cfg.LogLevel())
	}
	if cfg.API.Timeout != 3000 {
		t.Errorf("Timeout = %d, want environment over file", cfg.API.Timeout)
	}
}

func TestLoadMalformedConfigFile(t *testing.T) {
	clearEnv(t)
	_, dir := nestedDir(t)

	writeFile(t, filepath.Join(dir, FileName+".yaml"), "server: [port\n")

	if _, err := load(dir, ""); err == nil {
		t.Error("load() succeeded with a malformed config file")
	}
}

func TestFindEnvFile(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root, cwd, execDir string) string
	}{
		{
			name: "working directory first",
			setup: func(t *testing.T, root, cwd, execDir string) string {
				writeFile(t, filepath.Join(root, ".env"), "")
				writeFile(t, filepath.Join(cwd, ".env"), "")
				return filepath.Join(cwd, ".env")
			},
		},
		{
			name: "third parent",
			setup: func(t *testing.T, root, cwd, execDir string) string {
				writeFile(t, filepath.Join(root, ".env"), "")
				return filepath.Join(root, ".env")
			},
		},
		{
			name: "executable directory",
			setup: func(t *testing.T, root, cwd, execDir string) string {
				writeFile(t, filepath.Join(execDir, ".env"), "")
				return filepath.Join(execDir, ".env")
			},
		},
		{
			name: "none",
			setup: func(t *testing.T, root, cwd, execDir string) string {
				return ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, cwd := nestedDir(t)
			execDir := t.TempDir()
			want := tt.setup(t, root, cwd, execDir)

			if got := FindEnvFile(cwd, execDir); got != want {
				t.Errorf("FindEnvFile() = %q, want %q", got, want)
			}
		})
	}
}

func TestFindEnvFileSearchDepth(t *testing.T) {
	root := t.TempDir()
	cwd := filepath.Join(root, "a", "b", "c", "d")
	if err := os.MkdirAll(cwd, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(root, ".env"), "")

	if got := FindEnvFile(cwd, ""); got != "" {
		t.Errorf("FindEnvFile() = %q, want nothing beyond three parents", got)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Naver:  NaverConfig{BaseURL: naver.DefaultBaseURL},
			Server: ServerConfig{Port: 3000, LogLevel: "info"},
			API:    APIConfig{Timeout: 5000, Retries: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"unknown level", func(c *Config) { c.Server.LogLevel = "loud" }, "server.log_level"},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }, "api.timeout"},
		{"negative retries", func(c *Config) { c.API.Retries = -1 }, "api.retries"},
		{"no base url", func(c *Config) { c.Naver.BaseURL = "" }, "naver.base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := Config{Naver: NaverConfig{ClientID: "id"}}

	err := cfg.RequireCredentials()
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("RequireCredentials() error = %v", err)
	}
	if !strings.Contains(err.Error(), "NAVER_CLIENT_SECRET") || strings.Contains(err.Error(), "NAVER_CLIENT_ID") {
		t.Errorf("error = %q, want only the secret named", err)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"verbose", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"http", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{Server: ServerConfig{LogLevel: tt.level}}
			if got := cfg.LogLevel(); got != tt.want {
				t.Errorf("LogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}
