package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kenneth/autocrack/internal/decoder"
	"github.com/kenneth/autocrack/internal/keymanager"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisStore is the durable Cache Store backing store: the cache table
// as plain string keys (GET/SET, naturally indexed by encoded_text) and
// the statistics table as a per-run list plus a per-decoder index set.
type RedisStore struct {
	client    *redis.Client
	namespace string
	km        keymanager.KeyManager
	logger    *logrus.Logger
}

// NewRedisStore wraps an already-dialed client. Use NewStore (factory.go)
// for the dial-with-fallback path normal callers want.
func NewRedisStore(client *redis.Client, namespace string, km keymanager.KeyManager, logger *logrus.Logger) *RedisStore {
	if namespace == "" {
		namespace = "autocrack"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisStore{client: client, namespace: namespace, km: km, logger: logger}
}

func (s *RedisStore) entryKey(encodedText string) string {
	return fmt.Sprintf("%s:cache:%s", s.namespace, encodedText)
}

func (s *RedisStore) statsListKey(runID string) string {
	return fmt.Sprintf("%s:stats:run:%s", s.namespace, runID)
}

func (s *RedisStore) statsDecoderIndexKey(decoderName string) string {
	return fmt.Sprintf("%s:stats:decoder:%s", s.namespace, decoderName)
}

func (s *RedisStore) Get(ctx context.Context, encodedText string) (*Entry, error) {
	if encodedText == "" {
		return nil, ErrEmptyKey
	}

	raw, err := s.client.Get(ctx, s.entryKey(encodedText)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var rec sealedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("cache decode row: %w", err)
	}
	path, err := openPath(ctx, s.km, encodedText, rec)
	if err != nil {
		return nil, err
	}

	return &Entry{
		EncodedText:   encodedText,
		Path:          path,
		SchemaVersion: currentSchemaVersion,
	}, nil
}

func (s *RedisStore) Put(ctx context.Context, encodedText string, path []decoder.CrackResult) error {
	if encodedText == "" {
		return ErrEmptyKey
	}

	key := s.entryKey(encodedText)
	// append-only from the core's perspective: don't clobber an existing row.
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("cache exists check: %w", err)
	}
	if exists > 0 {
		return nil
	}

	rec, err := sealPath(ctx, s.km, encodedText, path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache encode row: %w", err)
	}

	if err := s.client.SetNX(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (s *RedisStore) PutStats(ctx context.Context, row StatsRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	data, err := json.Marshal(row)
	if err != nil {
		s.logger.WithError(err).Warn("cache: failed to encode statistics row")
		return err
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, s.statsListKey(row.RunID), data)
	pipe.SAdd(ctx, s.statsDecoderIndexKey(row.DecoderName), row.RunID)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Warn("cache: failed to persist statistics row")
		return err
	}
	return nil
}

func (s *RedisStore) Close(_ context.Context) error {
	return s.client.Close()
}
