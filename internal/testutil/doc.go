// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing conversations (turns, messages, stored
// records). These helpers avoid third-party dependencies and are not
// intended for production usage.
package testutil
