package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/five82/worldwise/internal/state"
)

const maxBackoff = 30 * time.Second

// reloader is the part of the store the refresher drives.
type reloader interface {
	LoadAll(ctx context.Context) error
	Snapshot() state.Snapshot
}

// StartRefresher reloads the collection every interval until ctx is
// cancelled or the store is closed. While loads keep failing the wait grows
// exponentially up to maxBackoff. The returned channel is closed when the
// goroutine exits. A non-positive interval starts nothing.
func StartRefresher(ctx context.Context, store reloader, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = slog.Default()
	}

	go func() {
		defer close(done)
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := store.LoadAll(ctx); err != nil {
				if errors.Is(err, state.ErrClosed) || ctx.Err() != nil {
					return
				}
				logger.WarnContext(ctx, "background refresh not run", slog.String("error", err.Error()))
			}

			failures := store.Snapshot().ConsecutiveFailures
			wait := calculateBackoff(failures, interval)
			if failures > 0 {
				logger.DebugContext(ctx, "background refresh backing off",
					slog.Int("failures", failures),
					slog.Duration("wait", wait),
				)
			}
			timer.Reset(wait)
		}
	}()
	return done
}

// calculateBackoff doubles base once per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return min(base, maxBackoff)
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
