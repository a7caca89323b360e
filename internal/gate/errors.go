// Package gate implements the visitor-entry core: daily identifier
// allocation, the open/closed entry lifecycle, exit matching and the
// read-only query engine. It talks to persistence only through the
// EntryStore contract so the rules stay testable apart from MySQL.
//
// The package also defines the error taxonomy shared by all components.
// "Nothing to close" and "no such entry" are normal outcomes reported as
// false booleans, never as errors; only malformed input and
// infrastructure failures surface as errors.
package gate

import "errors"

// ErrValidation is returned when caller-supplied input is malformed or
// missing: empty required fields, negative head-counts, an unparseable
// search date, an ambiguous exit selector. Handlers should translate
// this into an HTTP 400 response and callers must not retry unchanged.
var ErrValidation = errors.New("validation failed")

// ErrStorageUnavailable is returned when the store cannot be reached or
// a call times out. The failed operation had no effect (no partial
// writes); the caller may retry the whole request.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrConflict is returned by a store when a concurrent mutation raced
// the current one, e.g. a compare-and-set that found the row already
// changed. The resolver absorbs a bounded number of these before
// giving up with ErrStorageUnavailable.
var ErrConflict = errors.New("conflict")
