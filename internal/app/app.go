package app

import (
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr            string
	DatabaseDriver  string
	DatabaseURL     string
	SessionLifetime time.Duration
	LogLevel        string
	LogFormat       string
	SlowQuery       time.Duration
	RequestTimeout  time.Duration
}

// LoadConfig reads the environment and then lets command-line flags
// override it. args are the arguments after the program name.
func LoadConfig(args []string) (Config, error) {
	cfg := Config{
		Addr:            getenv("ADDR", ":8080"),
		DatabaseDriver:  getenv("DATABASE_DRIVER", "sqlite3"),
		DatabaseURL:     getenv("DATABASE_URL", "./blog.db"),
		SessionLifetime: hours(getenv("SESSION_LIFETIME_HOURS", "336"), 336*time.Hour),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "text"),
		SlowQuery:       millis(getenv("SLOW_QUERY_MS", "200"), 200*time.Millisecond),
		RequestTimeout:  duration(getenv("REQUEST_TIMEOUT", "10s"), 10*time.Second),
	}

	fs := flag.NewFlagSet("blog", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP network address")
	fs.StringVar(&cfg.DatabaseDriver, "db-driver", cfg.DatabaseDriver, "database driver: sqlite3 or postgres")
	fs.StringVar(&cfg.DatabaseURL, "dsn", cfg.DatabaseURL, "database DSN or SQLite file path")
	fs.DurationVar(&cfg.SessionLifetime, "session-lifetime", cfg.SessionLifetime, "login session lifetime")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
	fs.DurationVar(&cfg.SlowQuery, "slow-query", cfg.SlowQuery, "log queries slower than this")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", cfg.RequestTimeout, "per-request handler timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func hours(s string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Hour
}

func millis(s string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return time.Duration(n) * time.Millisecond
}

func duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// NewLogger builds the process logger from the configured level and format.
func NewLogger(w io.Writer, cfg Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func Must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
