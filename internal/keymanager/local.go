package keymanager

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/kenneth/autocrack/internal/cryptoutil"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrKeyManagerClosed is returned by any operation after Close.
var ErrKeyManagerClosed = errors.New("keymanager: manager is closed")

// Local is an in-process KeyManager: a single master secret, with
// per-wrap subkeys derived via HKDF-SHA256 and sealed with XChaCha20-
// Poly1305 (golang.org/x/crypto, as grounded in other_examples's
// encryption_service.go). Suitable for single-process deployments and
// tests; production deployments should prefer the KMIP-backed manager.
type Local struct {
	mu     sync.RWMutex
	master []byte
	closed bool
}

// NewLocal derives a new Local manager from masterSecret (e.g. read from
// an environment variable or a mounted file; the caller owns sourcing
// it). masterSecret must be non-empty.
func NewLocal(masterSecret []byte) (*Local, error) {
	if len(masterSecret) == 0 {
		return nil, errors.New("keymanager: master secret must not be empty")
	}
	master := make([]byte, len(masterSecret))
	copy(master, masterSecret)
	return &Local{master: master}, nil
}

func (l *Local) Provider() string { return "local" }

func (l *Local) deriveSubkey(salt []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, l.master, salt, []byte(info))
	pool := cryptoutil.GetGlobalBufferPool()
	out := pool.Get32()
	if _, err := io.ReadFull(reader, out); err != nil {
		pool.Put32(out)
		return nil, fmt.Errorf("derive subkey: %w", err)
	}
	return out, nil
}

func (l *Local) WrapKey(_ context.Context, plaintext []byte, metadata map[string]string) (*KeyEnvelope, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrKeyManagerClosed
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	subkey, err := l.deriveSubkey(salt, metadata["key_id"])
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(subkey)
	if err != nil {
		return nil, fmt.Errorf("construct aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	ciphertext := append(append(salt, nonce...), sealed...)

	return &KeyEnvelope{
		KeyID:      metadata["key_id"],
		KeyVersion: 1,
		Provider:   l.Provider(),
		Ciphertext: ciphertext,
	}, nil
}

func (l *Local) UnwrapKey(_ context.Context, envelope *KeyEnvelope, metadata map[string]string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrKeyManagerClosed
	}
	if envelope == nil || len(envelope.Ciphertext) < 16+24 {
		return nil, errors.New("keymanager: malformed envelope")
	}

	salt := envelope.Ciphertext[:16]
	rest := envelope.Ciphertext[16:]

	subkey, err := l.deriveSubkey(salt, metadata["key_id"])
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(subkey)
	if err != nil {
		return nil, fmt.Errorf("construct aead: %w", err)
	}
	if len(rest) < aead.NonceSize() {
		return nil, errors.New("keymanager: malformed envelope")
	}
	nonce, sealed := rest[:aead.NonceSize()], rest[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("unwrap key: %w", err)
	}
	return plaintext, nil
}

func (l *Local) ActiveKeyVersion(_ context.Context) (int, error) {
	return 1, nil
}

func (l *Local) HealthCheck(_ context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrKeyManagerClosed
	}
	return nil
}

func (l *Local) Close(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.master {
		l.master[i] = 0
	}
	l.closed = true
	return nil
}
