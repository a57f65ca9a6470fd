// Package idempotency remembers which order a checkout request created, keyed
// by the client's Idempotency-Key header, so a retried submit never places a
// second order.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderName   = "Idempotency-Key"
	maxKeyLength = 128
	pendingMark  = "pending:"

	// PendingTTL bounds how long an unfinished claim blocks its key. A claim
	// whose Complete never landed frees the key after this.
	PendingTTL = 2 * time.Minute
)

var (
	ErrInProgress = errors.New("a request with this idempotency key is still being processed")
	ErrInvalidKey = errors.New("idempotency key must be 1 to 128 characters")
)

// releases the claim only if it is still ours
var abortScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Store struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewStore returns nil when client is nil. A nil Store accepts every request
// and remembers nothing.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	pending := PendingTTL
	if pending > ttl {
		pending = ttl
	}
	return &Store{client: client, ttl: ttl, pendingTTL: pending}
}

// Claim is one request's hold on a key.
type Claim struct {
	store *Store
	key   string
	token string

	// OrderID is set when an earlier request with the same key already finished.
	OrderID  uint
	Replayed bool
}

func cacheKey(userID, key string) string {
	return fmt.Sprintf("checkout:idem:%s:%s", userID, key)
}

// Begin claims key for userID. An empty key yields a claim that does nothing.
func (s *Store) Begin(ctx context.Context, userID, key string) (*Claim, error) {
	key = strings.TrimSpace(key)
	if s == nil || key == "" {
		return &Claim{}, nil
	}
	if len(key) > maxKeyLength {
		return nil, ErrInvalidKey
	}

	c := &Claim{store: s, key: cacheKey(userID, key), token: pendingMark + uuid.NewString()}
	ok, err := s.client.SetNX(ctx, c.key, c.token, s.pendingTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx failed: %w", err)
	}
	if ok {
		return c, nil
	}

	val, err := s.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		// the other request aborted between our two calls
		return nil, ErrInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	if strings.HasPrefix(val, pendingMark) {
		return nil, ErrInProgress
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt idempotency record %q: %w", val, err)
	}
	return &Claim{OrderID: uint(id), Replayed: true}, nil
}

// Complete stores the order created under the claim for the full ttl. If it
// fails the pending claim still lapses after PendingTTL.
func (c *Claim) Complete(ctx context.Context, orderID uint) error {
	if c == nil || c.store == nil {
		return nil
	}
	if err := c.store.client.Set(ctx, c.key, strconv.FormatUint(uint64(orderID), 10), c.store.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Abort frees the key so the client may retry after a failure.
func (c *Claim) Abort(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	if err := abortScript.Run(ctx, c.store.client, []string{c.key}, c.token).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
