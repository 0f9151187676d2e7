package core

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingStore is returned when a component is constructed without a
	// backing list store.
	ErrMissingStore = errors.New("chatmemory: missing list store")

	// ErrMissingConfig is returned when a backend is constructed without the
	// connection settings it needs to locate the store.
	ErrMissingConfig = errors.New("chatmemory: missing store configuration")

	// ErrInvalidBatch is returned by AddMessages when a batch holds more than
	// one human or more than one AI turn.
	ErrInvalidBatch = errors.New("chatmemory: invalid turn batch")

	// ErrMalformedRecord matches every *MalformedRecordError.
	ErrMalformedRecord = errors.New("chatmemory: malformed record")
)

// MalformedRecordError describes a list entry that could not be decoded into
// a Message.
type MalformedRecordError struct {
	Index  int    // position in the chronological read, -1 when unknown
	Raw    string // raw entry as stored
	Reason string
	Err    error // underlying decode error, if any
}

func (e *MalformedRecordError) Error() string {
	msg := fmt.Sprintf("malformed record: %s", e.Reason)
	if e.Index >= 0 {
		msg = fmt.Sprintf("malformed record at index %d: %s", e.Index, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrMalformedRecord.
func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// Unwrap returns the underlying decode error.
func (e *MalformedRecordError) Unwrap() error { return e.Err }
