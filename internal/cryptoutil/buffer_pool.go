// Package cryptoutil provides the search engine and cache store's shared
// crypto-adjacent plumbing: pooled byte buffers for envelope-encryption
// scratch space, and hardware AES acceleration detection.
package cryptoutil

import (
	"sync"
	"sync/atomic"
)

// BufferPool provides thread-safe pooling of byte buffers sized for the
// cache store's at-rest encryption path: GCM nonces, AES-256 keys, HKDF
// salts, and general candidate-text scratch buffers. Adapted from the
// teacher's internal/crypto/buffer_pool.go, narrowed to the sizes this
// domain actually needs.
type BufferPool struct {
	pool12   *sync.Pool // GCM nonces
	pool32   *sync.Pool // AES-256 keys, HKDF salts
	poolText *sync.Pool // candidate plaintext scratch buffers

	hits12, misses12     int64
	hits32, misses32     int64
	hitsText, missesText int64
}

const textBufferSize = 4096

var globalBufferPool = &BufferPool{
	pool12: &sync.Pool{
		New: func() interface{} { return make([]byte, 12) },
	},
	pool32: &sync.Pool{
		New: func() interface{} { return make([]byte, 32) },
	},
	poolText: &sync.Pool{
		New: func() interface{} { return make([]byte, textBufferSize) },
	},
}

// GetGlobalBufferPool returns the process-wide buffer pool.
func GetGlobalBufferPool() *BufferPool {
	return globalBufferPool
}

// Get12 returns a 12-byte buffer from the pool.
func (p *BufferPool) Get12() []byte {
	if buf := p.pool12.Get(); buf != nil {
		atomic.AddInt64(&p.hits12, 1)
		return buf.([]byte)
	}
	atomic.AddInt64(&p.misses12, 1)
	return make([]byte, 12)
}

// Put12 returns a 12-byte buffer to the pool after zeroizing it.
func (p *BufferPool) Put12(buf []byte) {
	if cap(buf) != 12 {
		return
	}
	zero(buf)
	p.pool12.Put(buf[:12])
}

// Get32 returns a 32-byte buffer from the pool.
func (p *BufferPool) Get32() []byte {
	if buf := p.pool32.Get(); buf != nil {
		atomic.AddInt64(&p.hits32, 1)
		return buf.([]byte)
	}
	atomic.AddInt64(&p.misses32, 1)
	return make([]byte, 32)
}

// Put32 returns a 32-byte buffer to the pool after zeroizing it.
func (p *BufferPool) Put32(buf []byte) {
	if cap(buf) != 32 {
		return
	}
	zero(buf)
	p.pool32.Put(buf[:32])
}

// GetText returns a candidate-text scratch buffer of at least size bytes.
func (p *BufferPool) GetText(size int) []byte {
	if size <= textBufferSize {
		if buf := p.poolText.Get(); buf != nil {
			atomic.AddInt64(&p.hitsText, 1)
			b := buf.([]byte)
			return b[:size]
		}
		atomic.AddInt64(&p.missesText, 1)
		return make([]byte, size, textBufferSize)
	}
	return make([]byte, size)
}

// PutText returns a scratch buffer to the pool after zeroizing it.
func (p *BufferPool) PutText(buf []byte) {
	if cap(buf) != textBufferSize {
		return
	}
	zero(buf)
	p.poolText.Put(buf[:textBufferSize])
}

func zero(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

// Metrics reports pool hit/miss counters.
type Metrics struct {
	Hits12, Misses12     int64
	Hits32, Misses32     int64
	HitsText, MissesText int64
}

// GetMetrics returns current pool metrics.
func (p *BufferPool) GetMetrics() Metrics {
	return Metrics{
		Hits12:     atomic.LoadInt64(&p.hits12),
		Misses12:   atomic.LoadInt64(&p.misses12),
		Hits32:     atomic.LoadInt64(&p.hits32),
		Misses32:   atomic.LoadInt64(&p.misses32),
		HitsText:   atomic.LoadInt64(&p.hitsText),
		MissesText: atomic.LoadInt64(&p.missesText),
	}
}

// HitRate32 returns the hit rate for 32-byte buffers.
func (m Metrics) HitRate32() float64 {
	total := m.Hits32 + m.Misses32
	if total == 0 {
		return 0
	}
	return float64(m.Hits32) / float64(total)
}
