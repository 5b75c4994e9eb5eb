// Package cities provides an HTTP client for the cities backend.
//
// # Overview
//
// The backend exposes a single REST resource of visited places. This package
// owns the transport: it builds requests, decodes JSON and classifies failures.
// It keeps no state of its own; caching and state transitions live in the
// state package.
//
// # Endpoints
//
//   - GET    /cities       list every city
//   - GET    /cities/{id}  fetch one city
//   - POST   /cities       create a city from a Draft (server assigns the id)
//   - DELETE /cities/{id}  delete a city
//
// Each Client method performs exactly one round trip.
//
// # Client Usage
//
//	client, err := cities.NewClient("http://localhost:9000")
//	if err != nil {
//		return err
//	}
//	all, err := client.FetchAll(ctx)
//
// The base URL may be a bare host:port ("localhost:9000"), in which case the
// http scheme is assumed. A path prefix ("http://host/api") is kept and the
// resource is joined to it.
//
// # Error Handling
//
// Every failure is a *Error whose Kind is one of:
//
//   - ErrNetwork: connection failures, timeouts, unexpected statuses
//   - ErrDecode: malformed JSON, or a created city without an id
//   - ErrNotFound: 404, or an empty record for the requested id
//   - ErrValidation: a Draft rejected locally by Draft.Validate or by the server (400/422)
//
// Use errors.Is(err, cities.ErrNotFound) or KindOf(err) to branch on the kind.
// Remove treats a 404 as success: the caller asked for the city to be gone
// and it is.
//
// # Request Handling
//
// All requests:
//   - Use the caller's context for cancellation
//   - Set Accept: application/json and User-Agent: worldwise/0.1
//   - Carry a fresh X-Request-Id so backend logs can be correlated
//   - Have no timeout unless WithTimeout is given
//
// # Wire Format
//
// City names travel as "cityName" and dates as RFC 3339 strings. Ids are
// decoded from either JSON numbers or numeric strings.
package cities
