package state

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/five82/worldwise/internal/cities"
)

var (
	// ErrContextMissing means a store was used without being constructed by New.
	// It is a setup defect and is never recorded in the snapshot.
	ErrContextMissing = errors.New("state: store used without being initialized")
	// ErrClosed is returned by operations started after Close.
	ErrClosed = errors.New("state: store closed")
)

// Messages shown to users when an operation fails.
const (
	MsgLoadAllFailed = "There was an error loading cities..."
	MsgLoadOneFailed = "There was an error loading city..."
	MsgCreateFailed  = "There was an error creating city..."
	MsgRemoveFailed  = "There was an error deleting city..."
)

// Snapshot is a point-in-time copy of the store's state.
type Snapshot struct {
	Cities     []cities.City
	Current    cities.City
	HasCurrent bool
	IsLoading  bool
	// Error is the display message for the last failed operation, empty
	// after any success. Err carries the structured cause behind it.
	Error               string
	Err                 error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// IsOffline reports whether the last two or more operations failed in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Find returns the city with the given id from the collection.
func (s Snapshot) Find(id cities.ID) (cities.City, bool) {
	for _, c := range s.Cities {
		if c.ID == id {
			return c, true
		}
	}
	return cities.City{}, false
}

// Country is one entry of the derived country list.
type Country struct {
	Name  string
	Emoji string
}

// Countries lists the distinct countries of the collection in the order they
// first appear. Cities without a country are skipped.
func (s Snapshot) Countries() []Country {
	var out []Country
	seen := make(map[string]struct{})
	for _, c := range s.Cities {
		if c.Country == "" {
			continue
		}
		if _, ok := seen[c.Country]; ok {
			continue
		}
		seen[c.Country] = struct{}{}
		out = append(out, Country{Name: c.Country, Emoji: c.Emoji})
	}
	return out
}

// Store holds the client-side view of the cities collection. Operations are
// serialized: each one runs its loading, remote call and terminal transitions
// before the next starts. Snapshot never waits for an operation.
type Store struct {
	gateway cities.Gateway
	logger  *slog.Logger
	now     func() time.Time
	queue   *semaphore.Weighted

	mu       sync.RWMutex
	snapshot Snapshot
	closed   bool
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for transition and failure logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds an empty store backed by gateway.
func New(gateway cities.Gateway, opts ...Option) *Store {
	s := &Store{
		gateway: gateway,
		logger:  slog.Default(),
		now:     time.Now,
		queue:   semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state. It panics with
// ErrContextMissing on a nil store.
func (s *Store) Snapshot() Snapshot {
	if s == nil {
		panic(ErrContextMissing)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Cities = cloneCities(s.snapshot.Cities)
	return snap
}

// LoadAll replaces the collection with the backend's.
func (s *Store) LoadAll(ctx context.Context) error {
	return s.run(ctx, "load all", nil, func(ctx context.Context) transition {
		list, err := s.gateway.FetchAll(ctx)
		if err != nil {
			return s.reject(ctx, "load all", MsgLoadAllFailed, err)
		}
		return citiesLoaded{cities: list}
	})
}

// LoadOne focuses the city with the given id. When that city is already the
// current one nothing happens: no transition and no request.
func (s *Store) LoadOne(ctx context.Context, id cities.ID) error {
	hit := func() bool {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.snapshot.HasCurrent && s.snapshot.Current.ID == id
	}
	return s.run(ctx, "load one", hit, func(ctx context.Context) transition {
		city, err := s.gateway.FetchOne(ctx, id)
		if err != nil {
			return s.reject(ctx, "load one", MsgLoadOneFailed, err)
		}
		return cityLoaded{city: city}
	})
}

// Create stores draft remotely, appends the result and focuses it.
func (s *Store) Create(ctx context.Context, draft cities.Draft) error {
	return s.run(ctx, "create", nil, func(ctx context.Context) transition {
		city, err := s.gateway.Create(ctx, draft)
		if err != nil {
			return s.reject(ctx, "create", MsgCreateFailed, err)
		}
		return cityCreated{city: city}
	})
}

// Remove deletes the city remotely and drops it from the collection, clearing
// the focus if it pointed at that city.
func (s *Store) Remove(ctx context.Context, id cities.ID) error {
	return s.run(ctx, "remove", nil, func(ctx context.Context) transition {
		if err := s.gateway.Remove(ctx, id); err != nil {
			return s.reject(ctx, "remove", MsgRemoveFailed, err)
		}
		return cityDeleted{id: id}
	})
}

// Close detaches the store. Operations still in flight finish their remote
// call but their terminal transition is dropped.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// run executes one operation under the queue. skip, when non-nil, is checked
// once the queue is held and short-circuits the whole operation.
func (s *Store) run(ctx context.Context, op string, skip func() bool, call func(context.Context) transition) error {
	if s == nil || s.gateway == nil || s.queue == nil {
		return ErrContextMissing
	}
	if s.isClosed() {
		return ErrClosed
	}
	if err := s.queue.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.queue.Release(1)

	if s.isClosed() {
		return ErrClosed
	}
	if skip != nil && skip() {
		s.logger.DebugContext(ctx, "store operation skipped", slog.String("op", op))
		return nil
	}

	s.dispatch(ctx, loadingStarted{})
	s.dispatch(ctx, call(ctx))
	return nil
}

func (s *Store) dispatch(ctx context.Context, t transition) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "transition dropped on closed store", slog.String("transition", t.name()))
		return
	}
	s.snapshot = t.apply(s.snapshot, s.now())
	count := len(s.snapshot.Cities)
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "transition",
		slog.String("transition", t.name()),
		slog.Int("cities", count),
	)
}

func (s *Store) reject(ctx context.Context, op, message string, err error) transition {
	s.logger.WarnContext(ctx, "store operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return rejected{message: message, err: err}
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func cloneCities(items []cities.City) []cities.City {
	if len(items) == 0 {
		return nil
	}
	dup := make([]cities.City, len(items))
	copy(dup, items)
	return dup
}
