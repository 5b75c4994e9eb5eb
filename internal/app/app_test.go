package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/worldwise/internal/cities"
	"github.com/five82/worldwise/internal/state"
)

func TestRestoreFocus(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name      string
		id        cities.ID
		wantCalls int32
		wantFocus bool
	}{
		{"nothing remembered", 0, 0, false},
		{"remembered city gone", 5, 0, false},
		{"remembered city present", 17806751, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			gw := listGateway()
			fetchOne := gw.fetchOne
			gw.fetchOne = func(ctx context.Context, id cities.ID) (cities.City, error) {
				calls.Add(1)
				return fetchOne(ctx, id)
			}
			store := state.New(gw)
			require.NoError(t, store.LoadAll(context.Background()))

			restoreFocus(context.Background(), store, tt.id, discard)

			assert.Equal(t, tt.wantCalls, calls.Load())
			snap := store.Snapshot()
			assert.Equal(t, tt.wantFocus, snap.HasCurrent)
			if tt.wantFocus {
				assert.Equal(t, tt.id, snap.Current.ID)
			}
		})
	}
}

func TestOpenLogger_WritesJSONAtLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "worldwise.log")

	logger, closer, err := openLogger(path, slog.LevelWarn)
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("kept", "op", "load all")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), `"op":"load all"`)
}

func TestSetup_WiresStoreFromConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("WORLDWISE_API_URL", "http://cities.test:9100")
	t.Setenv("WORLDWISE_LOG_FILE", filepath.Join(home, "ww.log"))

	env, err := Setup(Options{ConfigPath: filepath.Join(home, "absent.toml")})
	require.NoError(t, err)
	defer env.Close()

	assert.Equal(t, "http://cities.test:9100", env.Client.BaseURL())
	assert.Empty(t, env.Store.Snapshot().Cities)
	assert.FileExists(t, filepath.Join(home, "ww.log"))

	require.NoError(t, env.Close())
	assert.ErrorIs(t, env.Store.LoadAll(context.Background()), state.ErrClosed)
}
