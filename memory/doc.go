// Package memory contains the session message store and the memory object
// built on top of it. The contracts (core.ListStore, core.MessageStore) live
// in the core package; this package provides:
//
//   - SessionMessageStore: per-session chat log over any core.ListStore
//   - BufferMemory: memory key / return-messages semantics plus a local cache
//   - InMemoryListStore: a process-local core.ListStore for tests and demos
//
// Remote backends live in sub-packages (memory/redis) so that callers who
// only need the in-memory store do not pull in a client library.
package memory
