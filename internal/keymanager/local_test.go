package keymanager

import (
	"bytes"
	"context"
	"testing"
)

func TestNewLocalRejectsEmptySecret(t *testing.T) {
	if _, err := NewLocal(nil); err == nil {
		t.Fatal("expected an error for an empty master secret")
	}
}

func TestLocalWrapUnwrapRoundTrips(t *testing.T) {
	mgr, err := NewLocal([]byte("a very secret master key"))
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close(context.Background())

	dek := []byte("thirty-two-byte-data-encrypt-key")
	envelope, err := mgr.WrapKey(context.Background(), dek, map[string]string{"key_id": "row-1"})
	if err != nil {
		t.Fatalf("WrapKey: %v", err)
	}
	if envelope.Provider != "local" {
		t.Errorf("expected provider 'local', got %q", envelope.Provider)
	}

	plaintext, err := mgr.UnwrapKey(context.Background(), envelope, map[string]string{"key_id": "row-1"})
	if err != nil {
		t.Fatalf("UnwrapKey: %v", err)
	}
	if !bytes.Equal(plaintext, dek) {
		t.Fatalf("expected round-tripped DEK %q, got %q", dek, plaintext)
	}
}

func TestLocalUnwrapFailsWithWrongKeyID(t *testing.T) {
	mgr, err := NewLocal([]byte("a very secret master key"))
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close(context.Background())

	envelope, err := mgr.WrapKey(context.Background(), []byte("payload"), map[string]string{"key_id": "row-1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.UnwrapKey(context.Background(), envelope, map[string]string{"key_id": "row-2"}); err == nil {
		t.Fatal("expected unwrap to fail when metadata key_id differs from the one used to wrap")
	}
}

func TestLocalUnwrapRejectsMalformedEnvelope(t *testing.T) {
	mgr, err := NewLocal([]byte("master"))
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close(context.Background())

	_, err = mgr.UnwrapKey(context.Background(), &KeyEnvelope{Ciphertext: []byte("too short")}, nil)
	if err == nil {
		t.Fatal("expected an error for a too-short ciphertext")
	}
}

func TestLocalOperationsFailAfterClose(t *testing.T) {
	mgr, err := NewLocal([]byte("master"))
	if err != nil {
		t.Fatal(err)
	}
	if err := mgr.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.WrapKey(context.Background(), []byte("x"), nil); err != ErrKeyManagerClosed {
		t.Errorf("expected ErrKeyManagerClosed after Close, got %v", err)
	}
	if err := mgr.HealthCheck(context.Background()); err != ErrKeyManagerClosed {
		t.Errorf("expected ErrKeyManagerClosed from HealthCheck after Close, got %v", err)
	}
}

func TestLocalActiveKeyVersionIsStable(t *testing.T) {
	mgr, err := NewLocal([]byte("master"))
	if err != nil {
		t.Fatal(err)
	}
	defer mgr.Close(context.Background())
	v, err := mgr.ActiveKeyVersion(context.Background())
	if err != nil || v != 1 {
		t.Errorf("expected version 1, nil error; got %d, %v", v, err)
	}
}
