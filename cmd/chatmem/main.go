// Command chatmem inspects and edits chat sessions stored in Redis.
//
//	chatmem --redis-url redis://localhost:6379/0 --session user-42 get --window 10
//
// Every persistent flag can also be set through a CHATMEM_ prefixed
// environment variable, e.g. CHATMEM_REDIS_URL or CHATMEM_SESSION.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
