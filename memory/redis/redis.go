// Package redis provides a core.ListStore backed by Redis lists using
// github.com/redis/go-redis/v9. Each Acquire opens a dedicated client that
// is closed with the returned connection, so no connection outlives the
// store operation that requested it.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hupe1980/chatmemory/core"
)

// Options configure the Redis list store. Either URL or Addr must be set.
type Options struct {
	// URL is a redis:// or rediss:// connection string. It takes precedence
	// over the discrete fields below.
	URL      string
	Addr     string
	Username string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PingOnAcquire verifies connectivity when a connection is acquired so
	// that an unreachable server surfaces as an Acquire error.
	PingOnAcquire bool
}

// ListStore implements core.ListStore on top of Redis.
type ListStore struct {
	clientOpts *goredis.Options
	ping       bool
}

// New validates the configuration and returns a ListStore. It does not
// contact the server.
func New(optFns ...func(o *Options)) (*ListStore, error) {
	opts := Options{PingOnAcquire: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts *goredis.Options
	switch {
	case strings.TrimSpace(opts.URL) != "":
		parsed, err := goredis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		clientOpts = parsed
	case strings.TrimSpace(opts.Addr) != "":
		clientOpts = &goredis.Options{
			Addr:     opts.Addr,
			Username: opts.Username,
			Password: opts.Password,
			DB:       opts.DB,
		}
	default:
		return nil, fmt.Errorf("%w: redis url or address required", core.ErrMissingConfig)
	}

	if opts.DialTimeout > 0 {
		clientOpts.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		clientOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		clientOpts.WriteTimeout = opts.WriteTimeout
	}
	// one operation, one connection
	clientOpts.PoolSize = 1
	clientOpts.MaxRetries = -1

	return &ListStore{clientOpts: clientOpts, ping: opts.PingOnAcquire}, nil
}

// Addr returns the server address the store connects to.
func (s *ListStore) Addr() string { return s.clientOpts.Addr }

// Acquire opens a new client. The caller must Close the returned connection.
func (s *ListStore) Acquire(ctx context.Context) (core.ListConn, error) {
	opts := *s.clientOpts
	client := goredis.NewClient(&opts)
	if s.ping {
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
		}
	}
	return &conn{client: client}, nil
}

type conn struct {
	client *goredis.Client
}

func (c *conn) PushHead(ctx context.Context, key string, values ...string) error {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return c.client.LPush(ctx, key, args...).Err()
}

func (c *conn) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.client.LRange(ctx, key, start, stop).Result()
}

func (c *conn) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *conn) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

func (c *conn) Close() error {
	return c.client.Close()
}
