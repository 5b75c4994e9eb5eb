package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// Options configures Serve.
type Options struct {
	Addr     string
	DBPath   string
	SeedPath string // optional; applied only to an empty database
	Logger   *slog.Logger
	// Ready, when set, is called with the bound address once the listener is open.
	Ready func(net.Addr)
}

// Serve opens the database, seeds it if asked and serves HTTP until ctx is
// cancelled, then shuts down gracefully.
func Serve(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := Open(opts.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if seedPath := strings.TrimSpace(opts.SeedPath); seedPath != "" {
		items, err := LoadSeed(seedPath)
		if err != nil {
			return err
		}
		n, err := repo.Seed(ctx, items)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "database seeded", "path", seedPath, "cities", n)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.Addr, err)
	}

	srv := &http.Server{
		Handler:      NewServer(repo, logger).Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.InfoContext(ctx, "server starting", "addr", ln.Addr().String(), "db", opts.DBPath)
		if opts.Ready != nil {
			opts.Ready(ln.Addr())
		}
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}
