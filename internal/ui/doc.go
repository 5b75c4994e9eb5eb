// Package ui provides the Bubble Tea terminal interface for worldwise.
//
// The Model never keeps city data of its own. A tick re-reads
// state.Store.Snapshot and every mutation (load, open, add, delete) runs as a
// tea.Cmd against the store; the view renders whatever snapshot came back.
//
// Views:
//
//   - List: the collection, j/k to move, enter to open a city
//   - Detail: the focused city (Current) with its Wikipedia link
//   - Countries: distinct countries derived from the collection
//
// Modals cover the add form and the delete confirmation. The selected theme
// and the last opened city are written to the prefs file.
package ui
