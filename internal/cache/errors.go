package cache

import "errors"

// ErrNotFound is returned by Get on a cache miss.
var ErrNotFound = errors.New("cache: entry not found")

// ErrEmptyKey is returned for an empty encoded_text lookup or insert;
// empty input is rejected before it ever reaches the engine, so this
// should never surface in practice.
var ErrEmptyKey = errors.New("cache: encoded_text must not be empty")

// ErrClosed is returned by MemoryStore operations after Close. RedisStore
// surfaces the Redis client's own closed-client error instead.
var ErrClosed = errors.New("cache: store is closed")
