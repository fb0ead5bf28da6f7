// Package rediscache keeps listing page cursors in Redis so every API instance
// shares them.
package rediscache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/listing"
)

// CursorCache namespaces keys with a generation number. Invalidate bumps the
// generation, so stale cursors are never read again and expire with their TTL.
type CursorCache struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ listing.CursorCache = (*CursorCache)(nil) // interface compliance check

func NewClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rdb, nil
}

// NewCursorCache keeps the cursors of one listing under prefix.
func NewCursorCache(rdb redis.UniversalClient, prefix string, ttl time.Duration) *CursorCache {
	return &CursorCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *CursorCache) generationKey() string { return c.prefix + ":gen" }

func (c *CursorCache) generation(ctx context.Context) (string, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey()).Result()
	if err == redis.Nil {
		return "0", nil
	}
	return gen, errors.Wrap(err, "reading cursor generation")
}

func (c *CursorCache) key(gen string, key listing.CursorKey) string {
	return c.prefix + ":" + gen + ":" + key.String()
}

func (c *CursorCache) Get(ctx context.Context, key listing.CursorKey) (listing.Cursor, bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return "", false, err
	}
	cursor, err := c.rdb.Get(ctx, c.key(gen, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "reading cursor")
	}
	return listing.Cursor(cursor), true, nil
}

func (c *CursorCache) Set(ctx context.Context, key listing.CursorKey, cursor listing.Cursor) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(c.rdb.Set(ctx, c.key(gen, key), string(cursor), c.ttl).Err(), "writing cursor")
}

func (c *CursorCache) Invalidate(ctx context.Context) error {
	return errors.Wrap(c.rdb.Incr(ctx, c.generationKey()).Err(), "bumping cursor generation")
}
