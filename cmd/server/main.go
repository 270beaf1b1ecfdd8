// Package main is the entry point for the to-do list server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars)
// 2. Create dependencies (logger)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// Each executable gets its own directory with its own main.go.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sakif/todolist/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	// slog.NewTextHandler outputs human-readable key=value lines to stdout.
	// LOG_LEVEL picks the minimum level: debug (default), info, warn or error.
	level, err := parseLevel(os.Getenv("LOG_LEVEL"))
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	if err != nil {
		logger.Warn("unknown LOG_LEVEL, using debug", slog.String("value", os.Getenv("LOG_LEVEL")))
	}

	// === 2. READ CONFIGURATION ===
	// os.Getenv returns "" if the variable isn't set, so we check and provide a default.
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err = strconv.Atoi(portStr) // Atoi = ASCII to Integer
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	strict := false
	if v := os.Getenv("STRICT_OWNERSHIP"); v != "" {
		strict, err = strconv.ParseBool(v)
		if err != nil {
			logger.Error("invalid STRICT_OWNERSHIP value", slog.String("value", v))
			os.Exit(1)
		}
	}

	// === 3. RESOLVE FILE PATHS ===
	// When running with `go run ./cmd/server` the working directory is the
	// project root, so "web/templates" and "web/static" work directly.
	templateDir, _ := filepath.Abs(getenv("TEMPLATE_DIR", "web/templates"))
	staticDir, _ := filepath.Abs(getenv("STATIC_DIR", "web/static"))

	// === 4. DATABASE PATH ===
	// Example: DB_PATH=/var/lib/todo/todo.db
	dbPath := getenv("DB_PATH", "data/todo.db")

	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	if dbPath != ":memory:" {
		dbDir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 5. SESSION SECRET ===
	// Unset means a fresh random key per process: every restart logs everyone
	// out. Pin it to keep sessions across restarts:
	//   SESSION_SECRET=$(openssl rand -hex 32)
	sessionSecret := os.Getenv("SESSION_SECRET")

	// === 6. CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:            port,
		TemplateDir:     templateDir,
		StaticDir:       staticDir,
		DBPath:          dbPath,
		SessionSecret:   sessionSecret,
		StrictOwnership: strict,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseLevel maps LOG_LEVEL to a slog level. Empty means debug.
func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelDebug, err
	}
	return level, nil
}
