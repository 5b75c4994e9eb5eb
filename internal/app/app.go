package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/five82/worldwise/internal/cities"
	"github.com/five82/worldwise/internal/config"
	"github.com/five82/worldwise/internal/prefs"
	"github.com/five82/worldwise/internal/state"
	"github.com/five82/worldwise/internal/ui"
)

// Options configure the worldwise application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/worldwise/prefs.toml
}

// Env is the wired runtime shared by the TUI and the subcommands.
type Env struct {
	Config config.Config
	Logger *slog.Logger
	Client *cities.Client
	Store  *state.Store

	logCloser io.Closer
}

// Setup loads configuration, opens the log file and builds the gateway and
// store. Callers must Close the returned Env.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := openLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	client, err := cities.NewClient(cfg.APIURL,
		cities.WithTimeout(cfg.RequestTimeout),
		cities.WithLogger(logger),
	)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("init cities client: %w", err)
	}

	return &Env{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Store:     state.New(client, state.WithLogger(logger)),
		logCloser: closer,
	}, nil
}

// Close detaches the store and flushes the log file.
func (e *Env) Close() error {
	if e == nil {
		return nil
	}
	e.Store.Close()
	if e.logCloser != nil {
		return e.logCloser.Close()
	}
	return nil
}

// Run boots the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	env.Logger.InfoContext(ctx, "worldwise starting", slog.String("api_url", env.Client.BaseURL()))

	// Populate the store before the first frame; failures show up in the header.
	if err := env.Store.LoadAll(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	restoreFocus(ctx, env.Store, userPrefs.LastCityID, env.Logger)

	refresher := StartRefresher(ctx, env.Store, env.Config.RefreshInterval, env.Logger)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Store:     env.Store,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		Logger:    env.Logger,
	})

	cancel()
	<-refresher
	env.Logger.Info("worldwise stopped")
	return err
}

// restoreFocus re-focuses the city remembered from the last session when it
// is still in the collection.
func restoreFocus(ctx context.Context, store *state.Store, id cities.ID, logger *slog.Logger) {
	if id <= 0 {
		return
	}
	if _, ok := store.Snapshot().Find(id); !ok {
		return
	}
	if err := store.LoadOne(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
		logger.WarnContext(ctx, "restore focus", slog.String("error", err.Error()))
	}
}

// openLogger writes JSON records to path. The TUI owns the terminal, so
// nothing is logged to stdout or stderr.
func openLogger(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	return logger, file, nil
}
