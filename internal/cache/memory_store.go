package cache

import (
	"context"
	"sync"
	"time"

	"github.com/kenneth/autocrack/internal/decoder"
	"github.com/kenneth/autocrack/internal/keymanager"
)

// MemoryStore is the in-memory fallback used when Redis is unreachable
// or unconfigured, and in unit tests. Entries never expire and are lost
// on process exit.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[string]sealedRecord
	stats  []StatsRow
	km     keymanager.KeyManager
	closed bool
}

// NewMemoryStore returns a ready-to-use in-memory store. km may be nil,
// in which case rows are stored unencrypted regardless of config.
func NewMemoryStore(km keymanager.KeyManager) *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]sealedRecord),
		km:   km,
	}
}

func (s *MemoryStore) Get(ctx context.Context, encodedText string) (*Entry, error) {
	if encodedText == "" {
		return nil, ErrEmptyKey
	}
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	rec, ok := s.rows[encodedText]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
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

func (s *MemoryStore) Put(ctx context.Context, encodedText string, path []decoder.CrackResult) error {
	if encodedText == "" {
		return ErrEmptyKey
	}
	rec, err := sealPath(ctx, s.km, encodedText, path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, exists := s.rows[encodedText]; exists {
		// append-only from the core's perspective: first writer wins.
		return nil
	}
	s.rows[encodedText] = rec
	return nil
}

func (s *MemoryStore) PutStats(_ context.Context, row StatsRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.stats = append(s.stats, row)
	return nil
}

// Stats returns a copy of every recorded statistics row, for tests.
func (s *MemoryStore) Stats() []StatsRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StatsRow, len(s.stats))
	copy(out, s.stats)
	return out
}

func (s *MemoryStore) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
