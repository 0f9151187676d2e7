package core

import "context"

// MessageStore maintains a per-session ordered log of chat messages.
// An empty session id in CallOptions selects the store's default session.
type MessageStore interface {
	GetMessages(ctx context.Context, optFns ...func(o *CallOptions)) ([]Message, error)
	GetStoredMessages(ctx context.Context, optFns ...func(o *CallOptions)) ([]StoredMessage, error)
	AddMessages(ctx context.Context, turns []ChatTurn, optFns ...func(o *CallOptions)) error
	ClearMessages(ctx context.Context, optFns ...func(o *CallOptions)) error
	SessionID() string
}

// CallOptions carries the optional per-call parameters of MessageStore
// operations. Fields a given operation does not use are ignored.
type CallOptions struct {
	// SessionID overrides the store's default session.
	SessionID string
	// WindowSize limits reads to the most recent turns. Zero defers to the
	// store default and a negative value reads the full log.
	WindowSize int
	// Prepend is placed in front of the stored history on reads.
	Prepend []Message
}

// WithSessionID targets a specific session.
func WithSessionID(id string) func(o *CallOptions) {
	return func(o *CallOptions) { o.SessionID = id }
}

// WithWindowSize limits a read to the most recent n turns.
func WithWindowSize(n int) func(o *CallOptions) {
	return func(o *CallOptions) { o.WindowSize = n }
}

// WithoutWindow reads the full log even when the store has a default window.
func WithoutWindow() func(o *CallOptions) {
	return func(o *CallOptions) { o.WindowSize = -1 }
}

// WithPrepend seeds a read with messages that are not in the store. Nil
// messages are dropped.
func WithPrepend(msgs ...Message) func(o *CallOptions) {
	return func(o *CallOptions) {
		for _, m := range msgs {
			if m != nil {
				o.Prepend = append(o.Prepend, m)
			}
		}
	}
}

// ApplyCallOptions folds optFns into a CallOptions value.
func ApplyCallOptions(optFns ...func(o *CallOptions)) CallOptions {
	var opts CallOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}
