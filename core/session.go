package core

import "github.com/google/uuid"

// NewSessionID generates a random session identifier. It is used when a
// store is constructed without an explicit session id.
func NewSessionID() string { return uuid.NewString() }

// SessionKey returns the list key for a session.
func SessionKey(prefix, sessionID string) string { return prefix + sessionID }
