package cache

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/kenneth/autocrack/internal/decoder"
	"github.com/kenneth/autocrack/internal/keymanager"
	"golang.org/x/crypto/chacha20poly1305"
)

// sealedRecord is what actually gets persisted when at-rest encryption
// is enabled: the path's JSON encrypted under a random per-row DEK, with
// that DEK itself wrapped by a KeyManager. Unencrypted rows skip
// straight to Path.
type sealedRecord struct {
	Encrypted  bool                     `json:"encrypted"`
	Path       json.RawMessage          `json:"path,omitempty"`
	Nonce      []byte                   `json:"nonce,omitempty"`
	Ciphertext []byte                   `json:"ciphertext,omitempty"`
	Envelope   *keymanager.KeyEnvelope  `json:"envelope,omitempty"`
}

func sealPath(ctx context.Context, km keymanager.KeyManager, encodedText string, path []decoder.CrackResult) (sealedRecord, error) {
	plaintext, err := json.Marshal(path)
	if err != nil {
		return sealedRecord{}, fmt.Errorf("marshal path: %w", err)
	}
	if km == nil {
		return sealedRecord{Encrypted: false, Path: plaintext}, nil
	}

	dek := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(dek); err != nil {
		return sealedRecord{}, fmt.Errorf("generate dek: %w", err)
	}
	aead, err := chacha20poly1305.NewX(dek)
	if err != nil {
		return sealedRecord{}, fmt.Errorf("construct aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return sealedRecord{}, fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil)

	envelope, err := km.WrapKey(ctx, dek, map[string]string{"key_id": encodedText})
	if err != nil {
		return sealedRecord{}, fmt.Errorf("wrap dek: %w", err)
	}

	return sealedRecord{
		Encrypted:  true,
		Nonce:      nonce,
		Ciphertext: sealed,
		Envelope:   envelope,
	}, nil
}

func openPath(ctx context.Context, km keymanager.KeyManager, encodedText string, rec sealedRecord) ([]decoder.CrackResult, error) {
	if !rec.Encrypted {
		var path []decoder.CrackResult
		if err := json.Unmarshal(rec.Path, &path); err != nil {
			return nil, fmt.Errorf("unmarshal path: %w", err)
		}
		return path, nil
	}
	if km == nil {
		return nil, fmt.Errorf("cache: row is encrypted but no key manager configured")
	}

	dek, err := km.UnwrapKey(ctx, rec.Envelope, map[string]string{"key_id": encodedText})
	if err != nil {
		return nil, fmt.Errorf("unwrap dek: %w", err)
	}
	aead, err := chacha20poly1305.NewX(dek)
	if err != nil {
		return nil, fmt.Errorf("construct aead: %w", err)
	}
	plaintext, err := aead.Open(nil, rec.Nonce, rec.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed path: %w", err)
	}

	var path []decoder.CrackResult
	if err := json.Unmarshal(plaintext, &path); err != nil {
		return nil, fmt.Errorf("unmarshal path: %w", err)
	}
	return path, nil
}
