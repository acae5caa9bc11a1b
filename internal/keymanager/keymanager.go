// Package keymanager abstracts the key-wrapping backends used by the
// cache store's optional at-rest encryption of decoded plaintext.
// Adapted from a KeyManager contract originally used for wrapping S3
// object DEKs, repurposed here to wrap cache-row DEKs.
package keymanager

import "context"

// KeyManager abstracts a KMS that wraps and unwraps per-cache-row data
// encryption keys (DEKs).
//
// Implementations must never expose plaintext master keys; cryptographic
// operations happen either locally (Local, for single-process/dev use) or
// within a KMS (KMIP, for production deployments).
type KeyManager interface {
	// Provider returns a short identifier ("local", "kmip") for
	// diagnostics and for the CacheEntry metadata recording which backend
	// wrapped a given row's key.
	Provider() string

	// WrapKey encrypts the plaintext DEK and returns an envelope suitable
	// for persisting alongside the cache row.
	WrapKey(ctx context.Context, plaintext []byte, metadata map[string]string) (*KeyEnvelope, error)

	// UnwrapKey decrypts the ciphertext in envelope and returns the
	// plaintext DEK.
	UnwrapKey(ctx context.Context, envelope *KeyEnvelope, metadata map[string]string) ([]byte, error)

	// ActiveKeyVersion returns the version identifier of the primary
	// wrapping key.
	ActiveKeyVersion(ctx context.Context) (int, error)

	// HealthCheck verifies the KMS is reachable and operational, without
	// performing actual encryption/decryption.
	HealthCheck(ctx context.Context) error

	// Close releases any underlying resources.
	Close(ctx context.Context) error
}

// KeyEnvelope captures what's needed to unwrap a DEK later.
type KeyEnvelope struct {
	KeyID      string
	KeyVersion int
	Provider   string
	Ciphertext []byte
}

// MetaKeyVersion is the CacheEntry metadata key recording which wrapping
// key version protected a row's DEK.
const MetaKeyVersion = "autocrack-cache-key-version"
