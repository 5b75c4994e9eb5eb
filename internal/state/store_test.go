package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/worldwise/internal/cities"
)

// fakeGateway is a hand-written test double for cities.Gateway.
// Set only the method fields your test needs.
type fakeGateway struct {
	fetchAll func(ctx context.Context) ([]cities.City, error)
	fetchOne func(ctx context.Context, id cities.ID) (cities.City, error)
	create   func(ctx context.Context, d cities.Draft) (cities.City, error)
	remove   func(ctx context.Context, id cities.ID) error

	calls atomic.Int32
}

func (f *fakeGateway) FetchAll(ctx context.Context) ([]cities.City, error) {
	f.calls.Add(1)
	return f.fetchAll(ctx)
}
func (f *fakeGateway) FetchOne(ctx context.Context, id cities.ID) (cities.City, error) {
	f.calls.Add(1)
	return f.fetchOne(ctx, id)
}
func (f *fakeGateway) Create(ctx context.Context, d cities.Draft) (cities.City, error) {
	f.calls.Add(1)
	return f.create(ctx, d)
}
func (f *fakeGateway) Remove(ctx context.Context, id cities.ID) error {
	f.calls.Add(1)
	return f.remove(ctx, id)
}

// compile-time check: fakeGateway must satisfy cities.Gateway.
var _ cities.Gateway = (*fakeGateway)(nil)

func city(id cities.ID, name string) cities.City {
	return cities.City{
		ID:       id,
		Name:     name,
		Date:     time.Date(2027, 1, int(id), 0, 0, 0, 0, time.UTC),
		Position: cities.Position{Lat: float64(id), Lng: float64(id)},
	}
}

func newTestStore(gw cities.Gateway, seed Snapshot) *Store {
	s := New(gw)
	s.snapshot = seed
	return s
}

// ---- Scenarios --------------------------------------------------------------

func TestStore_LoadAll_EmptyStore(t *testing.T) {
	gw := &fakeGateway{
		fetchAll: func(context.Context) ([]cities.City, error) {
			return []cities.City{city(1, "Lagos"), city(2, "Paris")}, nil
		},
	}
	s := New(gw)

	require.NoError(t, s.LoadAll(context.Background()))

	snap := s.Snapshot()
	require.Len(t, snap.Cities, 2)
	assert.Equal(t, "Lagos", snap.Cities[0].Name)
	assert.Equal(t, "Paris", snap.Cities[1].Name)
	assert.False(t, snap.IsLoading)
	assert.Empty(t, snap.Error)
	assert.NoError(t, snap.Err)
}

func TestStore_LoadOne_StringIDMatchesCurrent(t *testing.T) {
	gw := &fakeGateway{}
	seed := Snapshot{Current: city(2, "Paris"), HasCurrent: true, Cities: []cities.City{city(1, "Lagos"), city(2, "Paris")}}
	s := newTestStore(gw, seed)
	before := s.Snapshot()

	id, err := cities.ParseID("2")
	require.NoError(t, err)
	require.NoError(t, s.LoadOne(context.Background(), id))

	assert.Zero(t, gw.calls.Load())
	assert.Equal(t, before, s.Snapshot())
}

func TestStore_Create_AppendsAndFocuses(t *testing.T) {
	rome := city(3, "Rome")
	var posted cities.Draft
	gw := &fakeGateway{
		create: func(_ context.Context, d cities.Draft) (cities.City, error) {
			posted = d
			return d.WithID(3), nil
		},
	}
	s := newTestStore(gw, Snapshot{Cities: []cities.City{city(1, "Lagos"), city(2, "Paris")}})

	require.NoError(t, s.Create(context.Background(), rome.Draft()))

	snap := s.Snapshot()
	assert.Equal(t, "Rome", posted.Name)
	require.Len(t, snap.Cities, 3)
	assert.Equal(t, []cities.ID{1, 2, 3}, ids(snap.Cities))
	assert.True(t, snap.HasCurrent)
	assert.Equal(t, rome, snap.Current)
	assert.Equal(t, snap.Cities[2], snap.Current)
}

func TestStore_Remove_ClearsMatchingCurrent(t *testing.T) {
	gw := &fakeGateway{remove: func(context.Context, cities.ID) error { return nil }}
	s := newTestStore(gw, Snapshot{
		Cities:     []cities.City{city(1, "Lagos"), city(2, "Paris")},
		Current:    city(2, "Paris"),
		HasCurrent: true,
	})

	require.NoError(t, s.Remove(context.Background(), 2))

	snap := s.Snapshot()
	assert.Equal(t, []cities.ID{1}, ids(snap.Cities))
	assert.False(t, snap.HasCurrent)
	assert.Zero(t, snap.Current)
}

func TestStore_LoadAll_NetworkErrorKeepsData(t *testing.T) {
	netErr := &cities.Error{Op: "fetch all", Kind: cities.ErrNetwork, Err: errors.New("connection refused")}
	gw := &fakeGateway{fetchAll: func(context.Context) ([]cities.City, error) { return nil, netErr }}
	seed := []cities.City{city(1, "Lagos")}
	s := newTestStore(gw, Snapshot{Cities: seed})

	require.NoError(t, s.LoadAll(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, seed, snap.Cities)
	assert.False(t, snap.IsLoading)
	assert.Equal(t, MsgLoadAllFailed, snap.Error)
	assert.ErrorIs(t, snap.Err, cities.ErrNetwork)
	assert.Equal(t, 1, snap.ConsecutiveFailures)
}

// ---- Properties -------------------------------------------------------------

func TestStore_Remove_KeepsOtherCurrent(t *testing.T) {
	gw := &fakeGateway{remove: func(context.Context, cities.ID) error { return nil }}
	s := newTestStore(gw, Snapshot{
		Cities:     []cities.City{city(1, "Lagos"), city(2, "Paris"), city(1, "Lagos")},
		Current:    city(2, "Paris"),
		HasCurrent: true,
	})

	require.NoError(t, s.Remove(context.Background(), 1))

	snap := s.Snapshot()
	assert.Equal(t, []cities.ID{2}, ids(snap.Cities))
	assert.True(t, snap.HasCurrent)
	assert.Equal(t, cities.ID(2), snap.Current.ID)
}

func TestStore_LoadAll_ReplacesWholesale(t *testing.T) {
	gw := &fakeGateway{
		fetchAll: func(context.Context) ([]cities.City, error) {
			return []cities.City{city(5, "Oslo"), city(6, "Bergen"), city(5, "Oslo again")}, nil
		},
	}
	s := newTestStore(gw, Snapshot{
		Cities:     []cities.City{city(1, "Lagos"), city(2, "Paris")},
		Current:    city(2, "Paris"),
		HasCurrent: true,
		Error:      "old failure",
	})

	require.NoError(t, s.LoadAll(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, []cities.ID{5, 6}, ids(snap.Cities))
	assert.Equal(t, "Oslo", snap.Cities[0].Name)
	assert.Equal(t, cities.ID(2), snap.Current.ID, "current is untouched by LoadAll")
	assert.Empty(t, snap.Error, "success clears the previous error")
}

func TestStore_LoadingBracket(t *testing.T) {
	ops := map[string]func(s *Store) error{
		"load all": func(s *Store) error { return s.LoadAll(context.Background()) },
		"load one": func(s *Store) error { return s.LoadOne(context.Background(), 9) },
		"create":   func(s *Store) error { return s.Create(context.Background(), city(9, "Nice").Draft()) },
		"remove":   func(s *Store) error { return s.Remove(context.Background(), 1) },
	}
	for _, fail := range []bool{false, true} {
		for name, op := range ops {
			t.Run(name, func(t *testing.T) {
				var s *Store
				var during bool
				check := func() error {
					during = s.Snapshot().IsLoading
					if fail {
						return errors.New("boom")
					}
					return nil
				}
				gw := &fakeGateway{
					fetchAll: func(context.Context) ([]cities.City, error) { return nil, check() },
					fetchOne: func(context.Context, cities.ID) (cities.City, error) { return city(9, "Nice"), check() },
					create:   func(context.Context, cities.Draft) (cities.City, error) { return city(9, "Nice"), check() },
					remove:   func(context.Context, cities.ID) error { return check() },
				}
				s = newTestStore(gw, Snapshot{Cities: []cities.City{city(1, "Lagos")}})

				require.False(t, s.Snapshot().IsLoading)
				require.NoError(t, op(s))
				assert.True(t, during, "loading while the remote call is in flight")
				assert.False(t, s.Snapshot().IsLoading)
				assert.Equal(t, fail, s.Snapshot().Error != "")
			})
		}
	}
}

func TestStore_LoadOne_ReplacesCurrent(t *testing.T) {
	gw := &fakeGateway{
		fetchOne: func(_ context.Context, id cities.ID) (cities.City, error) { return city(id, "Paris"), nil },
	}
	s := newTestStore(gw, Snapshot{Current: city(1, "Lagos"), HasCurrent: true})

	require.NoError(t, s.LoadOne(context.Background(), 2))
	require.NoError(t, s.LoadOne(context.Background(), 2))

	snap := s.Snapshot()
	assert.Equal(t, cities.ID(2), snap.Current.ID)
	assert.EqualValues(t, 1, gw.calls.Load(), "second focus of the same id is a cache hit")
}

func TestStore_FailureMessages(t *testing.T) {
	notFound := &cities.Error{Op: "fetch one", Kind: cities.ErrNotFound}
	invalid := &cities.Error{Op: "create", Kind: cities.ErrValidation}
	gw := &fakeGateway{
		fetchOne: func(context.Context, cities.ID) (cities.City, error) { return cities.City{}, notFound },
		create:   func(context.Context, cities.Draft) (cities.City, error) { return cities.City{}, invalid },
		remove:   func(context.Context, cities.ID) error { return errors.New("reset") },
	}
	s := New(gw)
	ctx := context.Background()

	require.NoError(t, s.LoadOne(ctx, 4))
	snap := s.Snapshot()
	assert.Equal(t, MsgLoadOneFailed, snap.Error)
	assert.ErrorIs(t, snap.Err, cities.ErrNotFound)
	assert.False(t, snap.HasCurrent)

	require.NoError(t, s.Create(ctx, cities.Draft{}))
	snap = s.Snapshot()
	assert.Equal(t, MsgCreateFailed, snap.Error)
	assert.ErrorIs(t, snap.Err, cities.ErrValidation)
	assert.Empty(t, snap.Cities)

	require.NoError(t, s.Remove(ctx, 4))
	snap = s.Snapshot()
	assert.Equal(t, MsgRemoveFailed, snap.Error)
	assert.Equal(t, 3, snap.ConsecutiveFailures)
	assert.True(t, snap.IsOffline())
}

// ---- Concurrency and lifecycle ---------------------------------------------

func TestStore_OperationsAreSerialized(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var createCalled atomic.Bool

	gw := &fakeGateway{
		fetchAll: func(context.Context) ([]cities.City, error) {
			close(started)
			<-release
			return []cities.City{city(1, "Lagos")}, nil
		},
		create: func(_ context.Context, d cities.Draft) (cities.City, error) {
			createCalled.Store(true)
			return d.WithID(2), nil
		},
	}
	s := New(gw)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = s.LoadAll(ctx)
	}()
	<-started
	go func() {
		defer wg.Done()
		_ = s.Create(ctx, city(2, "Paris").Draft())
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, createCalled.Load(), "create waits for the in-flight load")
	assert.True(t, s.Snapshot().IsLoading)

	close(release)
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, []cities.ID{1, 2}, ids(snap.Cities))
	assert.False(t, snap.IsLoading)
	assert.Equal(t, cities.ID(2), snap.Current.ID)
}

func TestStore_QueuedOperationHonorsContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{
		fetchAll: func(context.Context) ([]cities.City, error) {
			close(started)
			<-release
			return nil, nil
		},
	}
	s := New(gw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.LoadAll(context.Background())
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Remove(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	<-done
	assert.False(t, s.Snapshot().IsLoading)
}

func TestStore_CloseDropsLateTransitions(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &fakeGateway{
		fetchAll: func(context.Context) ([]cities.City, error) {
			close(started)
			<-release
			return []cities.City{city(1, "Lagos")}, nil
		},
	}
	s := New(gw)

	done := make(chan error, 1)
	go func() { done <- s.LoadAll(context.Background()) }()
	<-started
	s.Close()
	close(release)
	require.NoError(t, <-done)

	assert.Empty(t, s.Snapshot().Cities)
	assert.ErrorIs(t, s.LoadAll(context.Background()), ErrClosed)
}

func TestStore_ContextMissing(t *testing.T) {
	var nilStore *Store
	assert.ErrorIs(t, nilStore.LoadAll(context.Background()), ErrContextMissing)
	assert.ErrorIs(t, nilStore.LoadOne(context.Background(), 1), ErrContextMissing)

	var zero Store
	assert.ErrorIs(t, zero.Create(context.Background(), cities.Draft{}), ErrContextMissing)
	assert.ErrorIs(t, New(nil).Remove(context.Background(), 1), ErrContextMissing)

	assert.PanicsWithValue(t, ErrContextMissing, func() { nilStore.Snapshot() })
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := newTestStore(&fakeGateway{}, Snapshot{Cities: []cities.City{city(1, "Lagos")}})

	snap := s.Snapshot()
	snap.Cities[0].Name = "changed"

	assert.Equal(t, "Lagos", s.Snapshot().Cities[0].Name)
}

func TestSnapshot_CountriesAndFind(t *testing.T) {
	lisbon := city(1, "Lisbon")
	lisbon.Country, lisbon.Emoji = "Portugal", "🇵🇹"
	porto := city(2, "Porto")
	porto.Country, porto.Emoji = "Portugal", "🇵🇹"
	madrid := city(3, "Madrid")
	madrid.Country, madrid.Emoji = "Spain", "🇪🇸"
	nowhere := city(4, "Nowhere")

	snap := Snapshot{Cities: []cities.City{lisbon, porto, nowhere, madrid}}

	assert.Equal(t, []Country{{Name: "Portugal", Emoji: "🇵🇹"}, {Name: "Spain", Emoji: "🇪🇸"}}, snap.Countries())

	got, ok := snap.Find(3)
	assert.True(t, ok)
	assert.Equal(t, "Madrid", got.Name)
	_, ok = snap.Find(99)
	assert.False(t, ok)
}

func ids(list []cities.City) []cities.ID {
	out := make([]cities.ID, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}
