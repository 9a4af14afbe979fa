package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Locker serializes writers of one sibling group. Acquire blocks until key is
// held on behalf of the transaction tx; the returned release func, when not
// nil, is called after that transaction has ended.
type Locker interface {
	Acquire(ctx context.Context, tx *gorm.DB, key string) (release func(), err error)
}

// PostgresLocker uses transaction-scoped advisory locks. They are released by
// the server at commit or rollback.
type PostgresLocker struct{}

func NewPostgresLocker() *PostgresLocker { return &PostgresLocker{} }

func (PostgresLocker) Acquire(ctx context.Context, tx *gorm.DB, key string) (func(), error) {
	if err := tx.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
		return nil, err
	}
	return nil, nil
}

// LocalLocker is a process-wide keyed mutex for single-process deployments.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *LocalLocker) Acquire(ctx context.Context, _ *gorm.DB, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// compare-and-delete so an expired lease never removes a successor's lock
var redisUnlock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extends the lease only while it still carries our token
var redisRenew = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker holds a lease in Redis for deployments whose database cannot
// provide advisory locks.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	prefix string
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl, retry: 25 * time.Millisecond, prefix: "ridermind:group-lock:"}
}

// NewRedisClient parses url and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, _ *gorm.DB, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()
	deadline, _ := ctx.Deadline()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.lease(deadline)).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring redis lock %s: %w", key, err)
		}
		if ok {
			stop, done := make(chan struct{}), make(chan struct{})
			go l.keepAlive(redisKey, token, deadline, stop, done)

			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					<-done
					releaseCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
					defer cancel()
					_ = redisUnlock.Run(releaseCtx, l.client, []string{redisKey}, token).Err()
				})
			}, nil
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// lease is the TTL, stretched to cover the transaction deadline when the
// caller has one.
func (l *RedisLocker) lease(deadline time.Time) time.Duration {
	if deadline.IsZero() {
		return l.ttl
	}
	return max(l.ttl, time.Until(deadline))
}

// keepAlive renews the lease every third of its TTL until stop is closed, so
// a transaction outliving the TTL keeps its lock. It gives up once the key no
// longer carries token.
func (l *RedisLocker) keepAlive(redisKey, token string, deadline time.Time, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := l.ttl / 3
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		renewed, err := redisRenew.Run(ctx, l.client, []string{redisKey}, token, l.lease(deadline).Milliseconds()).Int()
		cancel()
		if err == nil && renewed == 0 {
			return
		}
	}
}

// NewLocker builds the group locker named by cfg.LockProvider. The returned
// close func releases any client the locker holds.
func NewLocker(ctx context.Context, cfg *config.Config) (Locker, func(), error) {
	switch cfg.LockProvider {
	case "postgres":
		return NewPostgresLocker(), func() {}, nil
	case "redis":
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisLocker(client, cfg.LockTTL), func() { _ = client.Close() }, nil
	default:
		return NewLocalLocker(), func() {}, nil
	}
}
