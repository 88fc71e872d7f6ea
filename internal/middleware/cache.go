package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const cachePrefix = "tienda:catalog:"

// Cache stores successful catalog GET responses in Redis. A nil client disables it.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a response cache; ttl <= 0 defaults to one minute.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a Redis client is configured.
func (rc *Cache) Enabled() bool { return rc != nil && rc.rdb != nil }

// Handler serves cached bodies and stores 200 responses on a miss.
// Redis failures fall through to the handler.
func (rc *Cache) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rc.Enabled() || c.Method() != fiber.MethodGet {
			return c.Next()
		}
		key := cachePrefix + c.OriginalURL()

		if body, err := rc.rdb.Get(c.UserContext(), key).Bytes(); err == nil {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Send(body)
		} else if err != redis.Nil {
			log.Debug().Err(err).Str("key", key).Msg("cache read failed")
		}

		c.Set("X-Cache", "MISS")
		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() == fiber.StatusOK {
			body := append([]byte(nil), c.Response().Body()...)
			if err := rc.rdb.Set(c.UserContext(), key, body, rc.ttl).Err(); err != nil {
				log.Debug().Err(err).Str("key", key).Msg("cache write failed")
			}
		}
		return nil
	}
}

// Invalidate drops every cached catalog response.
func (rc *Cache) Invalidate(ctx context.Context) error {
	if !rc.Enabled() {
		return nil
	}
	iter := rc.rdb.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.rdb.Del(ctx, keys...).Err()
}

// InvalidateOnWrite clears the cache after a successful catalog mutation.
func (rc *Cache) InvalidateOnWrite() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil || !rc.Enabled() || c.Method() == fiber.MethodGet {
			return err
		}
		if status := c.Response().StatusCode(); status < 300 {
			if ierr := rc.Invalidate(c.UserContext()); ierr != nil {
				log.Warn().Err(ierr).Msg("catalog cache invalidation failed")
			}
		}
		return nil
	}
}
