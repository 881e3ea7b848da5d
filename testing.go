package vault

// This file provides in-memory collaborator fakes for tests and
// examples. They live in the main package so external users can build a
// fully working Vault without AWS access.

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TestKMS implements KeyManagementService (and DirectKeyManagement) in
// memory. Wrapped blobs are opaque identifiers into an internal table,
// which mimics the self-describing ciphertext blobs of AWS KMS: Decrypt
// needs no key identifier.
type TestKMS struct {
	mu     sync.Mutex
	keys   map[string][]byte // blob id -> key material
	master []byte
}

// NewTestKMS creates a test KMS with a random master key for direct
// encryption.
func NewTestKMS() *TestKMS {
	master := make([]byte, DataKeyLength)
	if _, err := rand.Read(master); err != nil {
		panic(fmt.Sprintf("failed to generate master key: %v", err))
	}

	return &TestKMS{
		keys:   make(map[string][]byte),
		master: master,
	}
}

// GenerateDataKey returns a fresh random 256-bit key and an opaque blob
// that later resolves back to it.
func (s *TestKMS) GenerateDataKey(ctx context.Context, keyID string) ([]byte, []byte, error) {
	plaintext := make([]byte, DataKeyLength)
	if _, err := rand.Read(plaintext); err != nil {
		return nil, nil, fmt.Errorf("failed to generate data key: %w", err)
	}

	blob := "blob:" + uuid.New().String()

	s.mu.Lock()
	s.keys[blob] = plaintext
	s.mu.Unlock()

	return plaintext, []byte(blob), nil
}

// Decrypt resolves a wrapped blob back to its key material.
func (s *TestKMS) Decrypt(ctx context.Context, keyID string, wrapped []byte) ([]byte, error) {
	if direct, ok := strings.CutPrefix(string(wrapped), "direct:"); ok {
		return s.directDecrypt([]byte(direct))
	}

	s.mu.Lock()
	plaintext, exists := s.keys[string(wrapped)]
	s.mu.Unlock()

	if !exists {
		return nil, fmt.Errorf("unknown wrapped key blob %q", wrapped)
	}
	return plaintext, nil
}

// DirectEncrypt seals arbitrary data under the fake master key.
func (s *TestKMS) DirectEncrypt(ctx context.Context, keyID string, plaintext []byte) ([]byte, error) {
	aead, err := s.masterAEAD()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return append([]byte("direct:"), sealed...), nil
}

func (s *TestKMS) directDecrypt(sealed []byte) ([]byte, error) {
	aead, err := s.masterAEAD()
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("sealed blob too short")
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

func (s *TestKMS) masterAEAD() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.master)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// MemoryStorage implements ObjectStorage in memory. All data is lost
// when the process terminates.
type MemoryStorage struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// NewMemoryStorage creates an empty in-memory object store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		buckets: make(map[string]map[string][]byte),
	}
}

// Get returns a copy of the stored object body.
func (m *MemoryStorage) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	body, exists := m.buckets[bucket][key]
	if !exists {
		return nil, NewObjectNotFoundError(key)
	}
	return bytes.Clone(body), nil
}

// Put stores a copy of the object body.
func (m *MemoryStorage) Put(ctx context.Context, bucket, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.buckets[bucket] == nil {
		m.buckets[bucket] = make(map[string][]byte)
	}
	m.buckets[bucket][key] = bytes.Clone(body)
	return nil
}

// Delete removes an object, reporting ErrNotFound for absent keys.
func (m *MemoryStorage) Delete(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.buckets[bucket][key]; !exists {
		return NewObjectNotFoundError(key)
	}
	delete(m.buckets[bucket], key)
	return nil
}

// Head reports whether an object exists.
func (m *MemoryStorage) Head(ctx context.Context, bucket, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.buckets[bucket][key]
	return exists, nil
}

// List returns the sorted object keys under the prefix.
func (m *MemoryStorage) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// NewTestVault wires a Vault to fresh in-memory collaborators. The
// returned storage allows tests to inspect or corrupt the raw objects.
func NewTestVault() (*Vault, *MemoryStorage, error) {
	storage := NewMemoryStorage()

	cfg := Config{
		Bucket: "test-vault-bucket",
		Key:    "test-key-id",
	}
	v, err := New(cfg, storage, NewTestKMS())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create test vault: %w", err)
	}
	return v, storage, nil
}
