package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

// generationTTL bounds how long an idle generation counter is kept.
const generationTTL = 24 * time.Hour

var errStaleFill = errors.New("cache generation changed during read")

// ViewCache is a generic JSON-backed Redis cache for read model projections.
// Bind it to a specific view type T; each instance holds a Redis client and an
// optional TTL (pass 0 for keys that should not expire). A ViewCache built
// from a nil client is disabled: every Get misses and writes are dropped.
//
// Every key has a generation counter next to it. Invalidate bumps the counter
// before deleting the value, and Load only writes a value back when the
// counter is unchanged since before the store read.
type ViewCache[T any] struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewViewCache creates a ViewCache whose keys are prefix+id.
func NewViewCache[T any](client goredis.UniversalClient, prefix string, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *ViewCache[T]) enabled() bool {
	return c != nil && c.client != nil
}

func (c *ViewCache[T]) key(id string) string {
	return c.prefix + id
}

func (c *ViewCache[T]) generationKey(id string) string {
	return c.prefix + id + ":gen"
}

// Get retrieves and unmarshals a value from Redis.
// Returns (nil, false) on any miss or deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, id string) (*T, bool) {
	if !c.enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err != nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Load returns the cached value for id, or calls fetch on a miss and caches
// its result unless id was invalidated while fetch was running.
func (c *ViewCache[T]) Load(ctx context.Context, id string, fetch func(context.Context) (*T, error)) (*T, error) {
	if v, ok := c.Get(ctx, id); ok {
		return v, nil
	}
	if !c.enabled() {
		return fetch(ctx)
	}

	generation, err := c.generation(ctx, c.client, id)
	if err != nil {
		log.Printf("ViewCache: generation read error for key %s: %v", c.key(id), err)
		return fetch(ctx)
	}
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, id, generation, v)
	return v, nil
}

func (c *ViewCache[T]) generation(ctx context.Context, cmd getter, id string) (string, error) {
	generation, err := cmd.Get(ctx, c.generationKey(id)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	return generation, err
}

// fill writes value only if the generation of id still matches.
func (c *ViewCache[T]) fill(ctx context.Context, id, generation string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("ViewCache: marshal error for key %s: %v", c.key(id), err)
		return
	}

	err = c.client.Watch(ctx, func(tx *goredis.Tx) error {
		current, err := c.generation(ctx, tx, id)
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, c.key(id), data, c.ttl)
			return nil
		})
		return err
	}, c.generationKey(id))

	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, goredis.TxFailedErr):
	default:
		log.Printf("ViewCache: write error for key %s: %v", c.key(id), err)
	}
}

// Invalidate drops the cached value and fences out fills that started
// before the call.
func (c *ViewCache[T]) Invalidate(ctx context.Context, id string) {
	if !c.enabled() {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(id))
		pipe.Expire(ctx, c.generationKey(id), generationTTL)
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		log.Printf("ViewCache: invalidate error for key %s: %v", c.key(id), err)
	}
}
