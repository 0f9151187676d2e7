// Package core provides the foundational domain types and contracts used by
// chatmemory. It defines:
//
//   - Messages (the HumanMessage / AIMessage tagged variant and ChatTurn input)
//   - StoredMessage, the JSON record written as one list entry per message
//   - ListStore / ListConn, the backing list service contract
//   - MessageStore, the per-session chat log contract with call options
//
// Concrete backends (in-memory, Redis) and memory objects live in the memory
// package tree; this package carries no third-party storage dependencies so
// that callers can depend on the contracts alone.
package core
