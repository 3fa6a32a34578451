package domain

import "errors"

// Core error taxonomy. All of these are handled locally (logged, event
// dropped); none propagates to the sender or crashes the worker.
var (
	// ErrMalformedEvent marks an event missing a required payload field.
	ErrMalformedEvent = errors.New("malformed event: missing required field")

	// ErrNoActiveRoom marks an event that carries no explicit room while its
	// sender occupies zero rooms, or more than one.
	ErrNoActiveRoom = errors.New("no active room for connection")

	// ErrUnknownEvent marks an event name the router does not handle.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrConnectionClosed marks an operation on a closed or unknown
	// connection. Callers treat it as a no-op signal.
	ErrConnectionClosed = errors.New("connection closed")
)
