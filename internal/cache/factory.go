package cache

import (
	"context"
	"time"

	"github.com/kenneth/autocrack/internal/config"
	"github.com/kenneth/autocrack/internal/keymanager"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewStore dials the Redis address in cfg and returns a RedisStore. If
// no address is configured, or the dial/ping fails, it logs a warning
// and falls back to an in-memory store. Each call dials and decides
// anew; the returned store is held by its caller.
func NewStore(cfg config.CacheConfig, km keymanager.KeyManager, logger *logrus.Logger) Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	if !cfg.EncryptAtRest {
		km = nil
	}

	if cfg.RedisAddr == "" {
		logger.Warn("cache: no redis address configured, falling back to in-memory store")
		return NewMemoryStore(km)
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("cache: redis unreachable, falling back to in-memory store")
		_ = client.Close()
		return NewMemoryStore(km)
	}

	return NewRedisStore(client, cfg.Namespace, km, logger)
}
