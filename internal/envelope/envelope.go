// Package envelope implements the dual-format cryptographic envelope that
// protects a stored secret: an authenticated AES-256-GCM layer bound to
// the secret's metadata, plus a legacy AES-256-CTR layer kept for
// backward compatibility with readers that predate the authenticated
// format. Both layers are produced on every write from the same fresh
// data key, so any reader can decrypt without a migration step.
package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize is the required data key length (AES-256).
	KeySize = 32

	// NonceSize is the GCM nonce length persisted in metadata.
	NonceSize = 12

	// TagSize is the GCM authentication tag length, appended to the
	// authenticated ciphertext.
	TagSize = 16

	// Algorithm is the metadata identifier of the authenticated cipher.
	Algorithm = "AESGCM"

	// legacyCounterSeed is the fixed initial counter value of the legacy
	// CTR nonce. Safe only because every store generates a fresh data
	// key, so the nonce never repeats under the same key.
	legacyCounterSeed = 1337
)

// ErrIntegrity indicates GCM tag verification failed: wrong key,
// corrupted ciphertext, or tampered metadata. No plaintext is ever
// returned alongside it.
var ErrIntegrity = errors.New("integrity verification failed")

// Bundle holds the three object bodies produced by one encryption pass.
type Bundle struct {
	// Legacy is the plaintext under AES-256-CTR with the fixed nonce.
	Legacy []byte

	// Authenticated is the plaintext under AES-256-GCM: ciphertext
	// followed by the 16-byte tag.
	Authenticated []byte

	// Meta is the metadata JSON document. Its raw bytes are also the
	// additional authenticated data of the GCM layer.
	Meta []byte
}

// Encrypt produces both ciphertext layers and the metadata document for
// a secret, using a single fresh data key for all of them.
func Encrypt(plaintext, dataKey []byte) (Bundle, error) {
	if len(dataKey) != KeySize {
		return Bundle{}, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(dataKey))
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Bundle{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	meta, err := NewMetadata(nonce).Marshal()
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to encode metadata: %w", err)
	}

	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to create GCM: %w", err)
	}

	// The metadata bytes double as AAD, binding the stored metadata
	// object to the ciphertext.
	authenticated := aesGCM.Seal(nil, nonce, plaintext, meta)

	legacy := make([]byte, len(plaintext))
	cipher.NewCTR(block, legacyNonce()).XORKeyStream(legacy, plaintext)

	return Bundle{
		Legacy:        legacy,
		Authenticated: authenticated,
		Meta:          meta,
	}, nil
}

// Decrypt reconstructs the plaintext from a stored ciphertext body,
// dispatching on the format selected by SelectFormat.
func Decrypt(stored, dataKey []byte, format Format) ([]byte, error) {
	if format.Authenticated {
		return DecryptAuthenticated(stored, dataKey, format.Nonce, format.AAD)
	}
	return DecryptLegacy(stored, dataKey)
}

// DecryptAuthenticated opens the GCM layer. The stored bytes are the
// ciphertext with the trailing tag; aad must be the raw bytes of the
// stored metadata object. Tag verification failure returns ErrIntegrity
// and no plaintext.
func DecryptAuthenticated(stored, dataKey, nonce, aad []byte) ([]byte, error) {
	if len(dataKey) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(dataKey))
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes, got %d", ErrIntegrity, NonceSize, len(nonce))
	}
	if len(stored) < TagSize {
		return nil, fmt.Errorf("%w: ciphertext shorter than authentication tag", ErrIntegrity)
	}

	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := aesGCM.Open(nil, nonce, stored, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return plaintext, nil
}

// DecryptLegacy decrypts the legacy CTR layer with the fixed nonce. No
// integrity check is possible; this weaker guarantee exists only for
// secrets written before the authenticated format.
func DecryptLegacy(stored, dataKey []byte) ([]byte, error) {
	if len(dataKey) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(dataKey))
	}

	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	plaintext := make([]byte, len(stored))
	cipher.NewCTR(block, legacyNonce()).XORKeyStream(plaintext, stored)
	return plaintext, nil
}

// legacyNonce returns the fixed CTR nonce: the 128-bit big-endian
// encoding of legacyCounterSeed.
func legacyNonce() []byte {
	nonce := make([]byte, aes.BlockSize)
	binary.BigEndian.PutUint64(nonce[8:], legacyCounterSeed)
	return nonce
}
