// Package state provides the client-side store for the cities collection.
//
// # Overview
//
// The Store keeps a local copy of the remote collection, the currently
// focused city, a loading flag and the last failure. Presentation code calls
// its four operations and renders Snapshot; it never mutates state directly.
//
// # Operations
//
// Every operation follows the same protocol:
//
//	Start     IsLoading = true (existing data stays visible)
//	Remote    one cities.Gateway call
//	Terminal  success: merge result, clear Error, IsLoading = false
//	          failure: keep data, set Error/Err, IsLoading = false
//
// Merge rules:
//
//   - LoadAll: replace Cities wholesale; Current untouched
//   - LoadOne: replace Current; skipped entirely when Current already has the id
//   - Create:  append the returned city and make it Current
//   - Remove:  drop the id from Cities; clear Current only if it held that id
//
// Gateway failures never escape as errors. They are stored as a fixed display
// message (Snapshot.Error) plus the structured cause (Snapshot.Err), so callers
// can both show the message and branch with errors.Is(snap.Err, cities.ErrNotFound).
// Operations return an error only for ErrContextMissing, ErrClosed, or a
// context that ends while the operation is still queued.
//
// # Transitions
//
// State changes are modeled as a closed set of transition types (loading,
// cities/loaded, city/loaded, city/created, city/deleted, rejected). Each one
// knows how to apply itself to a Snapshot. The interface has unexported
// methods, so no other package can introduce a transition the store does not
// understand.
//
// # Concurrency Model
//
// Operations are serialized through a single-slot semaphore: a second
// operation waits (honoring its context) until the first has applied its
// terminal transition. This keeps IsLoading an exact "an operation is in
// flight" signal and makes the LoadOne cache check see the result of any
// operation queued before it.
//
// Snapshot takes a read lock only and never waits for the queue, so a UI can
// render while a request is outstanding. Cities slices are copied on the way
// out.
//
// # Lifecycle
//
//	store := state.New(client, state.WithLogger(logger))
//	defer store.Close()
//
//	_ = store.LoadAll(ctx)
//	snap := store.Snapshot()
//
// After Close, operations return ErrClosed and any terminal transition from an
// operation still in flight is discarded.
package state
