package types

import "errors"

// Errors shared across packages.
var (
	// ErrGraphStoreUnavailable is the only fatal condition of a search. It is never
	// replaced by an empty result, which would read as "no competitors exist".
	ErrGraphStoreUnavailable = errors.New("graph store unavailable")

	ErrEmptyQuery = errors.New("query cannot be empty")
	ErrEmptyID    = errors.New("company id cannot be empty")
)

// ContextKey is the type of context keys set by the HTTP layer.
type ContextKey string

const (
	ContextKeyRequestID     ContextKey = "request_id"
	ContextKeyUserID        ContextKey = "user_id"
	ContextKeySessionID     ContextKey = "session_id"
	ContextKeyRequestSource ContextKey = "request_source"
)
