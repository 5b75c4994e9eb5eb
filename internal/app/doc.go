// Package app is the composition root for worldwise.
//
// # Overview
//
// Setup turns configuration into a wired Env: a JSON file logger, a
// cities.Client for the configured backend and a state.Store on top of it.
// Run uses that Env to drive the TUI; the subcommand actions (List, Show,
// Add, Remove, Countries, Logs, Serve) use it to do one thing and print the
// result.
//
// # TUI Startup
//
//	Setup()            config, logger, client, store
//	store.LoadAll()    populate before the first frame
//	restoreFocus()     LoadOne for the city remembered in prefs
//	StartRefresher()   optional background reloads
//	ui.Run()           blocks until the user quits
//
// A failed initial load is not fatal. The store records it and the header
// shows the message, so the user can retry with r once the backend is up.
//
// # Background Refresh
//
// With refresh_interval set, StartRefresher calls LoadAll on that cadence.
// While the store reports consecutive failures the wait doubles each time,
// capped at 30 seconds, and returns to the base interval after a success.
// The refresher stops when its context is cancelled or the store is closed.
//
// # Command Exit Status
//
// Store operations never return gateway failures; they land in the
// snapshot. Commands inspect the snapshot after the operation and return an
// error carrying both the display message and the structured cause, so
// errors.Is(err, cities.ErrNotFound) works on the command result and the
// process exits non-zero.
package app
