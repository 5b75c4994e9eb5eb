// Package logtail reads the end of the worldwise application log and turns
// its slog JSON lines into readable text.
//
// # Reading
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory stays proportional to the number of lines requested rather than the
// file size. Lines come back oldest first. A missing file is not an error.
//
//	lines, err := logtail.Read(cfg.LogFile, 50)
//
// # Decoding
//
// Parse understands the records written by slog.NewJSONHandler: time, level
// and msg become Entry fields and everything else lands in Attrs. Lines that
// are not JSON (a panic trace, for example) are kept verbatim in Raw.
//
// Format renders an Entry on one line with attributes sorted by key:
//
//	2026-03-01 10:20:30 WARN  store operation failed op="load all"
package logtail
