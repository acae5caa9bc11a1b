// Package cache implements the Cache Store: a durable, process-wide
// key-value table keyed on encoded_text, mapping to the full Decoding
// Path, plus a parallel statistics table. Backed by Redis when
// configured, falling back to an in-memory store with a logged warning
// otherwise. Modeled on an object-store client's "backend behind an
// interface" shape, generalized from an object store to a row store.
package cache

import (
	"context"
	"time"

	"github.com/kenneth/autocrack/internal/decoder"
)

// Entry is one row of the cache table: an encoded input mapped to its
// full Decoding Path.
type Entry struct {
	EncodedText string               `json:"encoded_text"`
	Path        []decoder.CrackResult `json:"path"`
	CreatedAt   time.Time            `json:"created_at"`

	// SchemaVersion allows tolerating trailing-field additions on read;
	// unknown fields are ignored rather than rejected.
	SchemaVersion int `json:"schema_version"`
}

const currentSchemaVersion = 1

// StatsRow is one row of the statistics table: a per-run, per-decoder
// aggregate. Writes are best-effort and must never fail the caller.
type StatsRow struct {
	RunID         string
	DecoderName   string
	SuccessCount  int
	TotalAttempts int
	SearchDepth   int
	MemoryBytes   uint64
	CreatedAt     time.Time
}

// Store is the Cache Store contract. Implementations must guarantee a
// sub-millisecond read path on a hit and append-only writes — no
// update-in-place on the cache table.
type Store interface {
	// Get returns the cached Decoding Path for encodedText, or
	// ErrNotFound on a miss.
	Get(ctx context.Context, encodedText string) (*Entry, error)

	// Put inserts the terminal outcome for encodedText. Called exactly
	// once per search run.
	Put(ctx context.Context, encodedText string, path []decoder.CrackResult) error

	// PutStats records a statistics row. Errors are logged by the
	// implementation and never returned to a caller that can't act on
	// them; the return value exists for tests.
	PutStats(ctx context.Context, row StatsRow) error

	// Close releases any underlying connections.
	Close(ctx context.Context) error
}
