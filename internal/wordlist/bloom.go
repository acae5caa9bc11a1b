package wordlist

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// bloomFilter is a classic k-hash Bloom filter sized for a target false
// positive rate. Probes combine two xxhash digests (of the word and of the
// word with a fixed suffix) per Kirsch-Mitzenmacher double hashing,
// avoiding k separate hash computations per probe.
type bloomFilter struct {
	bits []uint64
	m    uint64 // number of bits
	k    uint64 // number of hash functions
}

func newBloomFilter(expectedItems int, falsePositiveRate float64) *bloomFilter {
	if expectedItems < 1 {
		expectedItems = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}
	m := optimalM(expectedItems, falsePositiveRate)
	k := optimalK(expectedItems, m)
	words := (m + 63) / 64
	return &bloomFilter{
		bits: make([]uint64, words),
		m:    m,
		k:    k,
	}
}

func optimalM(n int, p float64) uint64 {
	m := -float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)
	if m < 64 {
		m = 64
	}
	return uint64(math.Ceil(m))
}

func optimalK(n int, m uint64) uint64 {
	k := math.Round(float64(m) / float64(n) * math.Ln2)
	if k < 1 {
		k = 1
	}
	if k > 20 {
		k = 20
	}
	return uint64(k)
}

func (b *bloomFilter) probes(word string) (h1, h2 uint64) {
	sum := xxhash.Sum64String(word)
	h1 = sum
	h2 = xxhash.Sum64String(word + "\x00salt")
	return h1, h2
}

func (b *bloomFilter) add(word string) {
	h1, h2 := b.probes(word)
	for i := uint64(0); i < b.k; i++ {
		bit := (h1 + i*h2) % b.m
		b.bits[bit/64] |= 1 << (bit % 64)
	}
}

func (b *bloomFilter) mightContain(word string) bool {
	h1, h2 := b.probes(word)
	for i := uint64(0); i < b.k; i++ {
		bit := (h1 + i*h2) % b.m
		if b.bits[bit/64]&(1<<(bit%64)) == 0 {
			return false
		}
	}
	return true
}
