// Package logging provides a minimal logging interface and adapters for chatmemory.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that stores and memory objects use for diagnostics. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - MemoryLogger stamping component and session attributes
//   - Scoped and LogStoreCall, used by stores to report each operation
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "json"})
//	store, err := memory.NewSessionMessageStore(lists, func(o *memory.SessionStoreOptions) {
//		o.Logger = logger
//	})
package logging
