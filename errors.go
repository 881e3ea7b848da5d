package vault

import (
	"errors"
	"fmt"

	"github.com/Jalle19/vault/internal/envelope"
)

var (
	// ErrNotFound indicates a stored object is absent. Depending on the
	// object and the operation this is either fatal (key object, chosen
	// ciphertext object) or an expected condition (metadata object).
	ErrNotFound = errors.New("secret not found")

	// ErrIntegrity indicates an authenticated-decryption tag mismatch:
	// wrong key, corrupted ciphertext, or tampered metadata. Operations
	// failing with this error never return plaintext.
	ErrIntegrity = envelope.ErrIntegrity

	// ErrCredentials indicates that no usable credentials could be
	// resolved from the credential chain.
	ErrCredentials = errors.New("credential resolution failed")

	// ErrInvalidConfiguration indicates a bad or incomplete Config.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDirectUnsupported indicates the configured key-management
	// service does not implement DirectKeyManagement.
	ErrDirectUnsupported = errors.New("direct key operations not supported")
)

// NewObjectNotFoundError wraps ErrNotFound with the object key that was
// missing. Providers use this when translating storage-level 404s.
func NewObjectNotFoundError(key string) error {
	return fmt.Errorf("%w: object %q", ErrNotFound, key)
}

// IsNotFound returns true if the error indicates an absent secret or object.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIntegrityError returns true if the error indicates failed tag
// verification on the authenticated ciphertext.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

// IsCredentialError returns true if the error indicates that the
// credential chain produced no usable credentials.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrCredentials)
}

// IsConfigurationError returns true if the error represents a
// configuration problem rather than a runtime failure.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}
