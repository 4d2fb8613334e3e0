// Package redis provides a kv.Backend on Redis and a distributed Locker
// built on redislock.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/tally/store/kv"
)

// DefaultPrefix namespaces every key written by the backend.
const DefaultPrefix = "tally"

// Backend stores each table as a JSON string under "<prefix>:table:<name>".
type Backend struct {
	client *goredis.Client
	prefix string
}

var _ kv.Backend = (*Backend)(nil)

// New returns a backend using client. An empty prefix uses DefaultPrefix.
func New(client *goredis.Client, prefix string) *Backend {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Backend{client: client, prefix: prefix}
}

// Dial connects to addr and returns a backend for it.
func Dial(ctx context.Context, addr, prefix string) (*Backend, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		PoolSize: 20,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("redis: connect %s: %w", addr, err)
	}
	return New(client, prefix), nil
}

// Client returns the underlying client.
func (b *Backend) Client() *goredis.Client { return b.client }

func (b *Backend) key(table string) string {
	return b.prefix + ":table:" + table
}

func (b *Backend) Load(ctx context.Context, table string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, b.key(table)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *Backend) Save(ctx context.Context, table string, data []byte) error {
	return b.client.Set(ctx, b.key(table), data, 0).Err()
}

// Migrate only checks connectivity; Redis needs no schema.
func (b *Backend) Migrate(ctx context.Context) error {
	return b.Ping(ctx)
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Backend) Close() error {
	return b.client.Close()
}

// ──────────────────────────────────────────────────
// Locker
// ──────────────────────────────────────────────────

// ErrNotObtained is returned when the lock stays held past the retry budget.
var ErrNotObtained = redislock.ErrNotObtained

// Locker serialises propagation rules across processes sharing one Redis.
type Locker struct {
	client *redislock.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
	limit  int
}

// NewLocker returns a Locker on key "<prefix>:lock".
func NewLocker(client *goredis.Client, prefix string) *Locker {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Locker{
		client: redislock.New(client),
		key:    prefix + ":lock",
		ttl:    30 * time.Second,
		retry:  50 * time.Millisecond,
		limit:  100,
	}
}

// Lock obtains the lock, retrying on a linear backoff. The returned func
// releases it.
func (l *Locker) Lock(ctx context.Context) (func(), error) {
	lock, err := l.client.Obtain(ctx, l.key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.retry), l.limit),
	})
	if err != nil {
		return nil, fmt.Errorf("redis: obtain lock %s: %w", l.key, err)
	}
	return func() {
		_ = lock.Release(context.WithoutCancel(ctx)) //nolint:errcheck // expiry covers a failed release
	}, nil
}
