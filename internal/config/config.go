// Package config loads the environment-variable driven configuration
// described in spec.md §6, using github.com/joho/godotenv for .env/.env.local
// loading the way the teacher's CLI entrypoint does, rather than a
// hand-rolled parser.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
	"git.home.luguber.info/inful/pagesync/internal/watcher"
)

// Config is the fully-resolved process configuration.
type Config struct {
	DatabaseURL    string
	MaxConnections int
	FrontendDist   string
	ContentDir     string
	StripExtension bool
	WebhookURL     string
	WebhookSecret  string
	ServeHome      bool
	HomeIdentifier string
	DebounceWindow time.Duration
}

const (
	defaultMaxConnections = 15
	defaultContentDir     = "./content/md"
	defaultWebhookURL     = "http://127.0.0.1:4000/build"
)

// Load reads .env/.env.local (if present, never overriding already-set
// process environment variables), then resolves every variable spec.md §6
// lists. It fails fast — mapped by callers to a StartupFailure — when a
// required variable is absent or the content directory doesn't exist.
func Load() (Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return Config{}, apperrors.ConfigError("DATABASE_URL is required").Build()
	}

	frontendDist := os.Getenv("FRONTEND_DIST_PATH")
	if frontendDist == "" {
		return Config{}, apperrors.ConfigError("FRONTEND_DIST_PATH is required").Build()
	}

	maxConnections := defaultMaxConnections
	if v := os.Getenv("MAX_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, apperrors.ConfigError("MAX_CONNECTIONS must be an integer").WithContext("value", v).Build()
		}
		maxConnections = n
	}

	contentDir := os.Getenv("CONTENT_DIR")
	if contentDir == "" {
		contentDir = defaultContentDir
	}
	absContentDir, err := filepath.Abs(contentDir)
	if err != nil {
		return Config{}, apperrors.ConfigError("resolve CONTENT_DIR").WithContext("value", contentDir).Build()
	}
	if info, err := os.Stat(absContentDir); err != nil || !info.IsDir() {
		return Config{}, apperrors.ConfigError(fmt.Sprintf("content directory does not exist: %s", absContentDir)).Build()
	}

	webhookURL := os.Getenv("FRONTEND_WEBHOOK_URL")
	if webhookURL == "" {
		webhookURL = defaultWebhookURL
	}

	debounce := watcher.DefaultDebounce
	if v := os.Getenv("SYNC_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, apperrors.ConfigError("SYNC_DEBOUNCE_MS must be an integer").WithContext("value", v).Build()
		}
		debounce = time.Duration(ms) * time.Millisecond
	}

	return Config{
		DatabaseURL:    databaseURL,
		MaxConnections: maxConnections,
		FrontendDist:   frontendDist,
		ContentDir:     absContentDir,
		StripExtension: boolEnv("DEFAULT_IDENTIFIER_STRIP_EXTENSION", false),
		WebhookURL:     webhookURL,
		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		ServeHome:      boolEnv("SERVE_HOME", false),
		HomeIdentifier: os.Getenv("HOME_IDENTIFIER"),
		DebounceWindow: debounce,
	}, nil
}

func boolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
