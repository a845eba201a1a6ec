// Package config loads settings from the environment (and an optional .env
// file) with defaults, and validates them before anything starts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Merge   MergeConfig
	History HistoryConfig
	Server  ServerConfig
	Logging LoggingConfig
}

type MergeConfig struct {
	// MaxFiles is how many workbooks one merge accepts (default: 5)
	MaxFiles int `env:"MAX_FILES" default:"5"`

	// MaxFileSize is the per-file limit in bytes (default: 50MiB)
	MaxFileSize int64 `env:"MAX_FILE_SIZE" default:"52428800"`

	// OutputDir is where the terminal UI saves merged workbooks
	OutputDir string `env:"OUTPUT_DIR" default:"."`
}

type HistoryConfig struct {
	// Path of the JSON history file; empty means the user config dir
	Path string `env:"HISTORY_PATH"`

	// Limit is how many entries are kept, newest first (default: 50)
	Limit int `env:"HISTORY_LIMIT" default:"50"`
}

type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

type LoggingConfig struct {
	// Level is debug, info, warn or error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File receives logs while the terminal UI owns the screen
	File string `env:"LOG_FILE"`

	// SeqURL, when set, also ships logs to a Seq server
	SeqURL string `env:"LOG_SEQ_URL"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// HistoryFile resolves the history location, falling back to
// <user config dir>/gopdon/history.json.
func (c HistoryConfig) HistoryFile() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(dir, "gopdon", "history.json"), nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []string

	if c.Merge.MaxFiles < 1 {
		errs = append(errs, "MAX_FILES must be at least 1")
	}
	if c.Merge.MaxFileSize < 1 {
		errs = append(errs, "MAX_FILE_SIZE must be positive")
	}
	if c.History.Limit < 1 {
		errs = append(errs, "HISTORY_LIMIT must be at least 1")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "SERVER_PORT must be between 1 and 65535")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT %q is not one of text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
