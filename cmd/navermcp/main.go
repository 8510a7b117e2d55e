package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/NERVsystems/navermcp/pkg/config"
	"github.com/NERVsystems/navermcp/pkg/server"
	"github.com/NERVsystems/navermcp/pkg/version"
)

// serverEntry is the key of this server under mcpServers in the Claude
// Desktop config.
const serverEntry = "NaverMaps"

const usageText = `네이버 지도 MCP 서버 (Naver Maps MCP server)

Usage:
  navermcp [options]

Options:
  --help                   Show this help
  --web                    Serve MCP over HTTP/SSE instead of stdio
  --port=NUMBER            HTTP port for --web (overrides PORT)
  --debug                  Enable debug logging
  --version                Display version information
  --generate-config=PATH   Write a Claude Desktop config entry to PATH

Examples:
  navermcp                   # MCP over stdio
  navermcp --web             # HTTP server on PORT (default 3000)
  navermcp --web --port=4000 # HTTP server on port 4000
`

type options struct {
	help           bool
	web            bool
	port           int
	debug          bool
	version        bool
	generateConfig string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("navermcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }

	fs.BoolVar(&opts.help, "help", false, "Show this help")
	fs.BoolVar(&opts.web, "web", false, "Serve MCP over HTTP/SSE")
	fs.IntVar(&opts.port, "port", 0, "HTTP port for --web")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Display version information")
	fs.StringVar(&opts.generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.port < 0 || opts.port > 65535 {
		return opts, fmt.Errorf("--port must be 1-65535, got %d", opts.port)
	}
	return opts, nil
}

// run is the process body; it returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 1
	}

	if opts.help {
		fmt.Fprint(stderr, usageText)
		return 0
	}

	// Show version and exit if requested
	if opts.version {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if opts.port > 0 {
		cfg.Server.Port = opts.port
	}
	if opts.debug {
		cfg.Server.Debug = true
	}

	// Configure logging; stdout carries the MCP stream in stdio mode.
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	// Generate Claude Desktop config if requested
	if opts.generateConfig != "" {
		if err := generateClientConfig(opts.generateConfig); err != nil {
			logger.Error("failed to generate config", "error", err)
			return 1
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", opts.generateConfig)
		return 0
	}

	if cfg.EnvFile != "" {
		logger.Info("loaded environment file", "path", cfg.EnvFile)
	} else {
		logger.Warn("no .env file found, using process environment only")
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	if err := cfg.RequireCredentials(); err != nil {
		if !opts.web {
			logger.Error("cannot start", "error", err)
			return 1
		}
		logger.Warn("starting without credentials; provider calls will fail", "error", err)
	}

	logger.Info("starting Naver Maps MCP server",
		"version", version.BuildVersion,
		"web", opts.web,
		"log_level", cfg.LogLevel().String())

	srv, err := server.NewServer(cfg.Provider(), logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reloadOnHangup(ctx, srv, logger)

	if opts.web {
		err = srv.RunHTTP(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
	} else {
		err = srv.RunStdio(ctx, stdin, stdout)
	}
	if err != nil {
		logger.Error("server error", "error", err)
		return 1
	}

	logger.Info("server stopped")
	return 0
}

// reloadOnHangup re-reads configuration on SIGHUP and hands the provider
// settings to the running server.
func reloadOnHangup(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			cfg, err := config.Load()
			if err != nil {
				logger.Error("reload failed", "error", err)
				continue
			}
			if err := cfg.Validate(); err != nil {
				logger.Error("reload rejected", "error", err)
				continue
			}
			srv.Reload(cfg.Provider())
		}
	}
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file. Credentials already present in an existing entry are preserved.
func generateClientConfig(outputPath string) error {
	logger := slog.Default()

	if outputPath == "" {
		return errors.New("output path is empty")
	}
	if filepath.Ext(outputPath) != ".json" {
		return fmt.Errorf("output path %q must have a .json extension", outputPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(outputPath), "/") {
		if part == ".." {
			return fmt.Errorf("output path %q must not contain '..'", outputPath)
		}
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	desktop := make(map[string]any)
	if data, err := os.ReadFile(outputPath); err == nil {
		if err := json.Unmarshal(data, &desktop); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			desktop = make(map[string]any)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read existing config: %w", err)
	}

	mcpServers, ok := desktop["mcpServers"].(map[string]any)
	if !ok {
		mcpServers = make(map[string]any)
		desktop["mcpServers"] = mcpServers
	}

	env := map[string]any{
		"NAVER_CLIENT_ID":     "<your-client-id>",
		"NAVER_CLIENT_SECRET": "<your-client-secret>",
	}
	if existing, ok := mcpServers[serverEntry].(map[string]any); ok {
		if oldEnv, ok := existing["env"].(map[string]any); ok {
			for k, v := range oldEnv {
				env[k] = v
			}
		}
	}

	mcpServers[serverEntry] = map[string]any{
		"command": absExecPath,
		"args":    []string{},
		"env":     env,
	}

	data, err := json.MarshalIndent(desktop, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// The entry may carry API secrets.
	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Chmod(outputPath, 0o600)
}
