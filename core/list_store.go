package core

import (
	"context"
	"time"
)

// ListStore hands out short-lived connections to a remote key/list service.
// Every MessageStore operation acquires its own connection and closes it
// before returning.
type ListStore interface {
	Acquire(ctx context.Context) (ListConn, error)
}

// ListConn is a single connection to the list service. Index arguments
// follow Redis semantics: zero based, stop inclusive, negative values count
// from the tail.
type ListConn interface {
	// PushHead inserts values at the head of the list stored at key, in
	// argument order (the last value ends up first).
	PushHead(ctx context.Context, key string, values ...string) error
	// Range returns the elements between start and stop.
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Expire sets the remaining lifetime of key to ttl.
	Expire(ctx context.Context, key string, ttl time.Duration) error
	// Close releases the connection.
	Close() error
}
