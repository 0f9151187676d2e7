package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chatmemory/core"
)

// Interface compliance (compile-time assertions)
var _ core.ListStore = (*InMemoryListStore)(nil)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryListStore_PushHeadAndRange(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryListStore()
	conn, err := s.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.PushHead(ctx, "k", "a"))
	require.NoError(t, conn.PushHead(ctx, "k", "b", "c"))

	all, err := conn.Range(ctx, "k", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, all)

	head, err := conn.Range(ctx, "k", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, head)

	tail, err := conn.Range(ctx, "k", -2, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, tail)

	past, err := conn.Range(ctx, "k", 5, 10)
	require.NoError(t, err)
	assert.Empty(t, past)

	missing, err := conn.Range(ctx, "nope", 0, -1)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestInMemoryListStore_ExpireAndDelete(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	s := NewInMemoryListStore()
	s.SetClock(clock.Now)

	conn, err := s.Acquire(ctx)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.PushHead(ctx, "k", "a"))
	require.NoError(t, conn.Expire(ctx, "k", time.Minute))

	ttl, ok := s.TTL("k")
	require.True(t, ok)
	assert.Equal(t, time.Minute, ttl)

	clock.Advance(time.Minute)
	assert.Equal(t, 0, s.Len("k"))
	_, ok = s.TTL("k")
	assert.False(t, ok)

	require.NoError(t, conn.PushHead(ctx, "k2", "x"))
	require.NoError(t, conn.Delete(ctx, "k2"))
	require.NoError(t, conn.Delete(ctx, "k2"))
	assert.Equal(t, 0, s.Len("k2"))
}

func TestInMemoryListStore_ConnectionTracking(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryListStore()

	conn, err := s.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.OpenConns())

	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	assert.Equal(t, 0, s.OpenConns())
	assert.Equal(t, 1, s.Acquisitions())

	err = conn.PushHead(ctx, "k", "a")
	assert.ErrorIs(t, err, ErrConnClosed)

	boom := errors.New("dial tcp: refused")
	s.FailNext(boom)
	_, err = s.Acquire(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.OpenConns())
}

func TestInMemoryListStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryListStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := s.Acquire(ctx)
			if err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			defer conn.Close()
			if err := conn.PushHead(ctx, "k", "v"); err != nil {
				t.Errorf("push: %v", err)
			}
			if _, err := conn.Range(ctx, "k", 0, -1); err != nil {
				t.Errorf("range: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len("k"))
	assert.Equal(t, 0, s.OpenConns())
}
