package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hupe1980/chatmemory/core"
)

// ErrConnClosed is returned when a closed InMemoryListStore connection is used.
var ErrConnClosed = errors.New("memory: connection closed")

type inMemoryList struct {
	items    []string // head first
	expireAt time.Time
}

// InMemoryListStore is a naive process-local core.ListStore. It mirrors the
// Redis list semantics needed by SessionMessageStore (head push, inclusive
// ranges with negative indexes, key expiry).
//
// Concurrency: protected by RWMutex. Expired keys are dropped lazily on
// access. Suitable only for tests / demos.
type InMemoryListStore struct {
	mu        sync.RWMutex
	lists     map[string]*inMemoryList
	now       func() time.Time
	open      int
	acquired  int
	failNext  error
	failAfter map[string]error // op -> error injected on the next call
}

// NewInMemoryListStore creates an empty in-memory list store.
func NewInMemoryListStore() *InMemoryListStore {
	return &InMemoryListStore{
		lists:     make(map[string]*inMemoryList),
		now:       time.Now,
		failAfter: make(map[string]error),
	}
}

// SetClock replaces the time source used for expiry.
func (s *InMemoryListStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailNext makes the next Acquire call return err.
func (s *InMemoryListStore) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// FailOp makes the next call of op ("push", "range", "delete", "expire")
// on any connection return err.
func (s *InMemoryListStore) FailOp(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter[op] = err
}

// OpenConns returns the number of acquired but not yet closed connections.
func (s *InMemoryListStore) OpenConns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Acquisitions returns the total number of successful Acquire calls.
func (s *InMemoryListStore) Acquisitions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.acquired
}

// TTL returns the remaining lifetime of key. ok is false when the key does
// not exist or has no expiry.
func (s *InMemoryListStore) TTL(key string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.liveLocked(key)
	if l == nil || l.expireAt.IsZero() {
		return 0, false
	}
	return l.expireAt.Sub(s.now()), true
}

// Len returns the number of elements stored at key.
func (s *InMemoryListStore) Len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l := s.liveLocked(key); l != nil {
		return len(l.items)
	}
	return 0
}

// Acquire implements core.ListStore.
func (s *InMemoryListStore) Acquire(ctx context.Context) (core.ListConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failNext; err != nil {
		s.failNext = nil
		return nil, err
	}
	s.open++
	s.acquired++
	return &inMemoryConn{store: s}, nil
}

// liveLocked returns the list at key, dropping it when expired. Caller must
// hold the write lock.
func (s *InMemoryListStore) liveLocked(key string) *inMemoryList {
	l, ok := s.lists[key]
	if !ok {
		return nil
	}
	if !l.expireAt.IsZero() && !s.now().Before(l.expireAt) {
		delete(s.lists, key)
		return nil
	}
	return l
}

// injectedLocked pops an injected failure for op. Caller must hold the write lock.
func (s *InMemoryListStore) injectedLocked(op string) error {
	if err, ok := s.failAfter[op]; ok {
		delete(s.failAfter, op)
		return err
	}
	return nil
}

type inMemoryConn struct {
	store  *InMemoryListStore
	closed bool
}

func (c *inMemoryConn) begin(ctx context.Context, op string) error {
	if c.closed {
		return ErrConnClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.store.injectedLocked(op)
}

func (c *inMemoryConn) PushHead(ctx context.Context, key string, values ...string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.begin(ctx, "push"); err != nil {
		return err
	}
	l := c.store.liveLocked(key)
	if l == nil {
		l = &inMemoryList{}
		c.store.lists[key] = l
	}
	items := make([]string, 0, len(l.items)+len(values))
	for i := len(values) - 1; i >= 0; i-- {
		items = append(items, values[i])
	}
	l.items = append(items, l.items...)
	return nil
}

func (c *inMemoryConn) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.begin(ctx, "range"); err != nil {
		return nil, err
	}
	l := c.store.liveLocked(key)
	if l == nil {
		return []string{}, nil
	}
	n := int64(len(l.items))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return []string{}, nil
	}
	out := make([]string, stop-start+1)
	copy(out, l.items[start:stop+1])
	return out, nil
}

func (c *inMemoryConn) Delete(ctx context.Context, key string) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.begin(ctx, "delete"); err != nil {
		return err
	}
	delete(c.store.lists, key)
	return nil
}

func (c *inMemoryConn) Expire(ctx context.Context, key string, ttl time.Duration) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if err := c.begin(ctx, "expire"); err != nil {
		return err
	}
	l := c.store.liveLocked(key)
	if l == nil {
		return nil
	}
	if ttl <= 0 {
		delete(c.store.lists, key)
		return nil
	}
	l.expireAt = c.store.now().Add(ttl)
	return nil
}

func (c *inMemoryConn) Close() error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.store.open--
	return nil
}
