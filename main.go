package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nconklindev/gopdon/internal/config"
	"github.com/nconklindev/gopdon/internal/history"
	"github.com/nconklindev/gopdon/internal/logging"
	"github.com/nconklindev/gopdon/internal/mapping"
	"github.com/nconklindev/gopdon/internal/merger"
	"github.com/nconklindev/gopdon/internal/sheetio"
	"github.com/nconklindev/gopdon/internal/ui"
	"github.com/nconklindev/gopdon/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("gopdon %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	serve := len(os.Args) > 1 && os.Args[1] == "serve"

	var run func(*config.Config) error
	if serve {
		run = runServer
	} else {
		run = runTUI
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// logOutput picks where logs go. The TUI owns the terminal, so without
// LOG_FILE its logs are dropped.
func logOutput(cfg *config.Config, serve bool) (io.Writer, func(), error) {
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return f, func() { f.Close() }, nil
	}
	if serve {
		return os.Stdout, func() {}, nil
	}
	return io.Discard, func() {}, nil
}

func openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	path, err := cfg.History.HistoryFile()
	if err != nil {
		logger.Warn("history disabled", "error", err)
		return nil
	}
	store, err := history.Open(path, cfg.History.Limit)
	if err != nil {
		// Open still returns an empty store for a corrupt file.
		logger.Warn("loading history", "error", err, "path", path)
	}
	return store
}

func runTUI(cfg *config.Config) error {
	out, closeOut, err := logOutput(cfg, false)
	if err != nil {
		return err
	}
	defer closeOut()

	logger, flush := logging.Setup(cfg.Logging, out)
	defer flush()

	m := merger.New(sheetio.New(), mapping.DefaultRegistry(), logger)

	p := tea.NewProgram(ui.InitialModel(ui.Deps{
		Merger:  m,
		History: openHistory(cfg, logger),
		Config:  cfg,
		Logger:  logger,
	}), tea.WithAltScreen(), tea.WithMouseCellMotion())

	_, err = p.Run()
	return err
}

func runServer(cfg *config.Config) error {
	out, closeOut, err := logOutput(cfg, true)
	if err != nil {
		return err
	}
	defer closeOut()

	logger, flush := logging.Setup(cfg.Logging, out)
	defer flush()

	m := merger.New(sheetio.New(), mapping.DefaultRegistry(), logger)
	srv := web.NewServer(m, openHistory(cfg, logger), cfg)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
