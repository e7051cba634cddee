// Package redis stores the label counter in Redis.
//
// Commits use optimistic locking (WATCH/MULTI), so two hosts sharing a
// counter can never both advance it from the same value. Runs can also be
// serialized with [Store.Lock], a SET NX lock with a TTL that is released
// only by its owner.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/matzehuels/labelsheet/pkg/counter"
	lserrors "github.com/matzehuels/labelsheet/pkg/errors"
)

const (
	// DefaultKeyPrefix namespaces all keys written by the store.
	DefaultKeyPrefix = "labelsheet:counter:"

	// DefaultLockTTL bounds how long a crashed run can hold the lock.
	DefaultLockTTL = 30 * time.Second

	lockPoll = 50 * time.Millisecond
)

// Config holds the connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Name     string        // counter name, appended to DefaultKeyPrefix
	LockTTL  time.Duration // zero means DefaultLockTTL
}

// Store is a Redis backed counter.
type Store struct {
	client  goredis.UniversalClient
	key     string
	lockKey string
	lockTTL time.Duration
	owned   bool
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := lserrors.ValidateCounterName(cfg.Name); err != nil {
		return nil, err
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, lserrors.Wrap(lserrors.ErrCodePersistence, err, "connect to redis at %s", cfg.Addr)
	}
	s := NewWithClient(client, cfg.Name, cfg.LockTTL)
	s.owned = true
	return s, nil
}

// NewWithClient creates a store on an existing client. The client is not
// closed by Close.
func NewWithClient(client goredis.UniversalClient, name string, lockTTL time.Duration) *Store {
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	key := DefaultKeyPrefix + name
	return &Store{
		client:  client,
		key:     key,
		lockKey: key + ":lock",
		lockTTL: lockTTL,
	}
}

// Load implements counter.Store.
func (s *Store) Load(ctx context.Context) (counter.Snapshot, error) {
	snap, err := get(ctx, s.client, s.key)
	if err != nil {
		return counter.Snapshot{}, lserrors.Wrap(lserrors.ErrCodePersistence, err, "read counter %s", s.key)
	}
	return snap, nil
}

// Commit implements counter.Store.
func (s *Store) Commit(ctx context.Context, seen counter.Snapshot, next int) error {
	var conflict *lserrors.ConflictError
	err := s.client.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := get(ctx, tx, s.key)
		if err != nil {
			return err
		}
		if cur != seen {
			conflict = &lserrors.ConflictError{Expected: seen.Value, Actual: cur.Value, Missing: seen.Exists && !cur.Exists}
			return conflict
		}
		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Set(ctx, s.key, next, 0)
			return nil
		})
		return err
	}, s.key)

	switch {
	case err == nil:
		return nil
	case conflict != nil:
		return conflict
	case errors.Is(err, goredis.TxFailedErr):
		// The key changed between WATCH and EXEC.
		cur, _ := s.Load(ctx)
		return &lserrors.ConflictError{Expected: seen.Value, Actual: cur.Value, Missing: !cur.Exists}
	default:
		return lserrors.Wrap(lserrors.ErrCodePersistence, err, "write counter %s", s.key)
	}
}

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Lock implements counter.Locker.
func (s *Store) Lock(ctx context.Context) (func() error, error) {
	token := uuid.NewString()
	for {
		ok, err := s.client.SetNX(ctx, s.lockKey, token, s.lockTTL).Result()
		if err != nil {
			return nil, lserrors.Wrap(lserrors.ErrCodePersistence, err, "acquire lock %s", s.lockKey)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, lserrors.Wrap(lserrors.ErrCodePersistence, ctx.Err(), "counter %s is locked by another run", s.key)
		case <-time.After(lockPoll):
		}
	}

	return func() error {
		// Release even if the run's context is already cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return unlockScript.Run(ctx, s.client, []string{s.lockKey}, token).Err()
	}, nil
}

// Close implements counter.Store.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// Key returns the Redis key of the counter.
func (s *Store) Key() string {
	return s.key
}

// getter is satisfied by clients and transactions.
type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func get(ctx context.Context, c getter, key string) (counter.Snapshot, error) {
	val, err := c.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return counter.Snapshot{}, nil
	}
	if err != nil {
		return counter.Snapshot{}, err
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return counter.Snapshot{}, fmt.Errorf("key %s holds %q, not a label number", key, val)
	}
	return counter.Snapshot{Value: n, Exists: true}, nil
}

var (
	_ counter.Store  = (*Store)(nil)
	_ counter.Locker = (*Store)(nil)
)
