package keymanager

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ovh/kmip-go/kmipclient"
	"github.com/ovh/kmip-go/payloads"
)

// KMIPKeyReference names one wrapping key known to the KMIP server, by
// its server-side unique identifier and a locally tracked version number.
type KMIPKeyReference struct {
	ID      string
	Version int
}

// CosmianKMIPOptions configures a KMIP-backed KeyManager. Named after
// the Cosmian KMIP server this was built against, though any KMIP
// 2.x-compatible server works.
type CosmianKMIPOptions struct {
	Endpoint  string
	Keys      []KMIPKeyReference
	TLSConfig *tls.Config
	Timeout   time.Duration
	Provider  string

	// DualReadWindow is accepted but not read by the manager: UnwrapKey
	// accepts an envelope wrapped under any configured key, matched by
	// key ID or else by version, however old that version is.
	DualReadWindow int
}

// CosmianKMIPManager wraps/unwraps cache-row DEKs via a remote KMIP
// server's Encrypt/Decrypt operations, authored directly against the
// kmip-go client and payloads package's request/response shapes.
type CosmianKMIPManager struct {
	mu       sync.RWMutex
	client   *kmipclient.Client
	keys     []KMIPKeyReference
	provider string
	timeout  time.Duration
	closed   bool
}

// NewCosmianKMIPManager dials the configured KMIP endpoint and returns a
// ready-to-use manager.
func NewCosmianKMIPManager(opts CosmianKMIPOptions) (*CosmianKMIPManager, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("keymanager: kmip endpoint is required")
	}
	if len(opts.Keys) == 0 {
		return nil, errors.New("keymanager: at least one wrapping key reference is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := kmipclient.Dial(opts.Endpoint, kmipclient.WithTLSConfig(opts.TLSConfig))
	if err != nil {
		return nil, fmt.Errorf("dial kmip endpoint: %w", err)
	}

	provider := opts.Provider
	if provider == "" {
		provider = "kmip"
	}

	return &CosmianKMIPManager{
		client:   client,
		keys:     append([]KMIPKeyReference{}, opts.Keys...),
		provider: provider,
		timeout:  timeout,
	}, nil
}

func (m *CosmianKMIPManager) Provider() string { return m.provider }

func (m *CosmianKMIPManager) activeKey() (KMIPKeyReference, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.keys) == 0 {
		return KMIPKeyReference{}, errors.New("keymanager: no wrapping keys configured")
	}
	active := m.keys[0]
	for _, k := range m.keys {
		if k.Version > active.Version {
			active = k
		}
	}
	return active, nil
}

func (m *CosmianKMIPManager) keyByID(id string) (KMIPKeyReference, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range m.keys {
		if k.ID == id {
			return k, true
		}
	}
	return KMIPKeyReference{}, false
}

func (m *CosmianKMIPManager) keyByVersion(version int) (KMIPKeyReference, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range m.keys {
		if k.Version == version {
			return k, true
		}
	}
	return KMIPKeyReference{}, false
}

func (m *CosmianKMIPManager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

func (m *CosmianKMIPManager) WrapKey(ctx context.Context, plaintext []byte, metadata map[string]string) (*KeyEnvelope, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrKeyManagerClosed
	}
	m.mu.RUnlock()

	key, err := m.activeKey()
	if err != nil {
		return nil, err
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Request(ctx, &payloads.EncryptRequestPayload{
		UniqueIdentifier: key.ID,
		Data:             plaintext,
	})
	if err != nil {
		return nil, fmt.Errorf("kmip encrypt: %w", err)
	}

	return &KeyEnvelope{
		KeyID:      key.ID,
		KeyVersion: key.Version,
		Provider:   m.provider,
		Ciphertext: resp.Data,
	}, nil
}

func (m *CosmianKMIPManager) UnwrapKey(ctx context.Context, envelope *KeyEnvelope, metadata map[string]string) ([]byte, error) {
	if envelope == nil {
		return nil, errors.New("keymanager: nil envelope")
	}
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, ErrKeyManagerClosed
	}
	m.mu.RUnlock()

	key, ok := m.keyByID(envelope.KeyID)
	if !ok {
		key, ok = m.keyByVersion(envelope.KeyVersion)
		if !ok {
			return nil, fmt.Errorf("keymanager: unknown wrapping key for envelope (id=%q version=%d)", envelope.KeyID, envelope.KeyVersion)
		}
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	resp, err := m.client.Request(ctx, &payloads.DecryptRequestPayload{
		UniqueIdentifier: key.ID,
		Data:             envelope.Ciphertext,
	})
	if err != nil {
		return nil, fmt.Errorf("kmip decrypt: %w", err)
	}
	return resp.Data, nil
}

func (m *CosmianKMIPManager) ActiveKeyVersion(_ context.Context) (int, error) {
	key, err := m.activeKey()
	if err != nil {
		return 0, err
	}
	return key.Version, nil
}

func (m *CosmianKMIPManager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrKeyManagerClosed
	}
	m.mu.RUnlock()

	key, err := m.activeKey()
	if err != nil {
		return err
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	_, err = m.client.Request(ctx, &payloads.GetRequestPayload{
		UniqueIdentifier: key.ID,
	})
	if err != nil {
		return fmt.Errorf("kmip health check: %w", err)
	}
	return nil
}

func (m *CosmianKMIPManager) Close(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.client.Close()
}
