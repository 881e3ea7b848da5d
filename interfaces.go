package vault

import "context"

// KeyManagementService defines the contract for wrapping and unwrapping
// per-secret data keys.
//
// Implementations delegate the actual cryptography to an external key
// management collaborator (AWS KMS, HashiCorp Vault Transit Engine, an
// in-memory fake for tests). The plaintext data key is used locally and
// never persisted; the wrapped form is what gets stored alongside the
// secret.
//
// Implementations:
//   - AWS KMS: github.com/Jalle19/vault/providers/awskms.KMSService
//   - Vault Transit: github.com/Jalle19/vault/providers/hashivault.TransitService
//   - In-memory (testing): vault.TestKMS
//
// No caching or retry is performed at this boundary. Collaborator errors
// propagate unchanged and fail the enclosing vault operation; retry
// policy belongs to the transport layer.
type KeyManagementService interface {
	// GenerateDataKey requests a fresh 256-bit symmetric data key from
	// the key-management collaborator. It returns both the raw key
	// material and its wrapped (collaborator-encrypted) form.
	GenerateDataKey(ctx context.Context, keyID string) (plaintext, wrapped []byte, err error)

	// Decrypt unwraps a previously wrapped data key. The keyID may be
	// ignored by implementations whose wrapped blobs are self-describing
	// (AWS KMS); others (Vault Transit) require it.
	Decrypt(ctx context.Context, keyID string, wrapped []byte) ([]byte, error)
}

// DirectKeyManagement is implemented by key-management services that can
// additionally encrypt caller payloads directly under the master key,
// without the envelope object layout. Vault.DirectWrap uses it when
// available.
type DirectKeyManagement interface {
	DirectEncrypt(ctx context.Context, keyID string, plaintext []byte) ([]byte, error)
}

// ObjectStorage defines the contract for the object-store collaborator
// that holds the physical representation of each secret.
//
// Get and Delete must translate storage-level "no such object" failures
// into ErrNotFound (see NewObjectNotFoundError) so the client can apply
// its per-object tolerance policy.
//
// Implementations:
//   - AWS S3: github.com/Jalle19/vault/providers/awss3.Store
//   - In-memory (testing): vault.MemoryStorage
type ObjectStorage interface {
	// Get returns the full body of an object, or an error wrapping
	// ErrNotFound if the object does not exist.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Put writes an object with private access.
	Put(ctx context.Context, bucket, key string, body []byte) error

	// Delete removes an object. Deleting an absent object returns an
	// error wrapping ErrNotFound where the backend reports it; backends
	// with idempotent deletes may return nil.
	Delete(ctx context.Context, bucket, key string) error

	// Head reports whether an object exists without fetching its body.
	Head(ctx context.Context, bucket, key string) (bool, error)

	// List returns the keys of all objects under the given prefix.
	// Backends are not required to paginate: only the first listing
	// page the service intrinsically returns is produced.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
}

// CredentialResolver resolves ambient credentials for the storage and
// key-management collaborators.
//
// EnsureResolved is called at the start of every public vault operation.
// It is idempotent by caching: the first successful resolution is reused
// for the remainder of the process's life, with no expiry or refresh
// handling at this layer.
type CredentialResolver interface {
	EnsureResolved(ctx context.Context) error
}
