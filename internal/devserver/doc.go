// Package devserver is a small backend for the /cities resource, for local
// development and tests.
//
// It speaks the same protocol as the json-server setup the client was built
// against:
//
//	GET    /cities       200 [City...]
//	GET    /cities/{id}  200 City | 404
//	POST   /cities       201 City | 400 malformed body | 422 {"error": msg}
//	DELETE /cities/{id}  200 {}   | 404
//
// Records live in SQLite (modernc.org/sqlite, no cgo). Ids are assigned by
// SQLite. A json-server data file can seed an empty database.
//
// Every request gets a request id (taken from X-Request-Id when the caller
// sends one) that is echoed back and included in the per-request log line.
package devserver
