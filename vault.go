package vault

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hengadev/errsx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Jalle19/vault/internal/envelope"
	"github.com/Jalle19/vault/internal/layout"
)

// Vault is a client for a bucket of envelope-encrypted secrets.
//
// Every secret is stored as four co-located objects: the wrapped data
// key, a legacy CTR ciphertext, an authenticated GCM ciphertext and a
// metadata document. Writes always produce all four so that readers of
// either format can decrypt; reads prefer the authenticated layer and
// fall back to the legacy one for secrets written before it existed.
//
// The bucket is not locked or versioned: concurrent Store calls for the
// same name race and can leave the object set mixed between two
// versions. Callers needing at-most-one-writer semantics must serialize
// externally.
type Vault struct {
	storage ObjectStorage
	kms     KeyManagementService
	creds   CredentialResolver
	logger  *zap.Logger

	bucket string
	key    string
	prefix string
}

// New creates a Vault from a validated Config and the two mandatory
// collaborators. Optional behavior (logger, credential resolver) is
// injected through options.
func New(cfg Config, storage ObjectStorage, kms KeyManagementService, opts ...Option) (*Vault, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if storage == nil {
		return nil, fmt.Errorf("%w: object storage is required", ErrInvalidConfiguration)
	}
	if kms == nil {
		return nil, fmt.Errorf("%w: key management service is required", ErrInvalidConfiguration)
	}

	v := &Vault{
		storage: storage,
		kms:     kms,
		logger:  zap.NewNop(),
		bucket:  cfg.Bucket,
		key:     cfg.Key,
		prefix:  cfg.Prefix,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = zap.NewNop()
	}
	return v, nil
}

// ensureCredentials is the resolve-once suspension point at the head of
// every public operation.
func (v *Vault) ensureCredentials(ctx context.Context) error {
	if v.creds == nil {
		return nil
	}
	return v.creds.EnsureResolved(ctx)
}

// Lookup fetches and decrypts a secret. The key object and the chosen
// ciphertext object are required; a missing metadata object selects the
// legacy decryption path rather than failing.
func (v *Vault) Lookup(ctx context.Context, name string) ([]byte, error) {
	if err := v.ensureCredentials(ctx); err != nil {
		return nil, err
	}

	objects := layout.Objects(v.prefix, name)
	v.logger.Debug("looking up secret", zap.String("name", name))

	var (
		dataKey           []byte
		ciphertext        []byte
		fromAuthenticated bool
		meta              []byte
		metaFound         bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wrapped, err := v.storage.Get(gctx, v.bucket, objects.Key)
		if err != nil {
			return fmt.Errorf("failed to fetch key object for %q: %w", name, err)
		}
		dataKey, err = v.kms.Decrypt(gctx, v.key, wrapped)
		if err != nil {
			return fmt.Errorf("failed to unwrap data key for %q: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		// Prefer the authenticated ciphertext, fall back to the legacy
		// object for secrets that predate it.
		data, err := v.storage.Get(gctx, v.bucket, objects.Authenticated)
		if err == nil {
			ciphertext, fromAuthenticated = data, true
			return nil
		}
		if !IsNotFound(err) {
			return fmt.Errorf("failed to fetch ciphertext for %q: %w", name, err)
		}
		data, err = v.storage.Get(gctx, v.bucket, objects.Legacy)
		if err != nil {
			return fmt.Errorf("failed to fetch ciphertext for %q: %w", name, err)
		}
		ciphertext = data
		return nil
	})
	g.Go(func() error {
		data, err := v.storage.Get(gctx, v.bucket, objects.Meta)
		if err != nil {
			// A missing or unreadable metadata object is the normal
			// marker of a legacy-format secret, never an error.
			if !IsNotFound(err) {
				v.logger.Warn("treating unreadable metadata as absent",
					zap.String("name", name), zap.Error(err))
			}
			return nil
		}
		meta, metaFound = data, true
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	format := envelope.SelectFormat(meta, metaFound)
	switch {
	case format.Authenticated && !fromAuthenticated:
		// Metadata exists but the GCM object is gone (half-written
		// secret); the legacy bytes already fetched are still valid.
		format = envelope.Format{}
	case !format.Authenticated && fromAuthenticated:
		// GCM object exists without metadata; only the legacy layer is
		// decryptable.
		data, err := v.storage.Get(ctx, v.bucket, objects.Legacy)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch ciphertext for %q: %w", name, err)
		}
		ciphertext = data
	}

	plaintext, err := envelope.Decrypt(ciphertext, dataKey, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secret %q: %w", name, err)
	}
	return plaintext, nil
}

// Store encrypts and writes a secret, overwriting any prior version of
// the same name. A fresh data key is generated per call; both ciphertext
// layers and the metadata document derive from it.
//
// The four object writes are issued concurrently and independently.
// There is no rollback: if some writes fail after others succeeded, the
// secret is left in an inconsistent multi-object state and the composite
// error reports which objects failed.
func (v *Vault) Store(ctx context.Context, name string, plaintext []byte) error {
	if err := v.ensureCredentials(ctx); err != nil {
		return err
	}

	dataKey, wrapped, err := v.kms.GenerateDataKey(ctx, v.key)
	if err != nil {
		return fmt.Errorf("failed to generate data key for %q: %w", name, err)
	}

	bundle, err := envelope.Encrypt(plaintext, dataKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret %q: %w", name, err)
	}

	objects := layout.Objects(v.prefix, name)
	v.logger.Debug("storing secret", zap.String("name", name))

	writes := []struct {
		key  string
		body []byte
	}{
		{objects.Key, wrapped},
		{objects.Legacy, bundle.Legacy},
		{objects.Authenticated, bundle.Authenticated},
		{objects.Meta, bundle.Meta},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = make(errsx.Map)
	)
	for _, w := range writes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := v.storage.Put(ctx, v.bucket, w.key, w.body); err != nil {
				mu.Lock()
				errs.Set(w.key, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := errs.AsError(); err != nil {
		return fmt.Errorf("failed to store secret %q: %w", name, err)
	}
	return nil
}

// deleteTarget pairs an object key with its delete tolerance. The
// authenticated ciphertext and metadata objects may legitimately be
// absent (secrets written before the authenticated format existed), so
// their failures are swallowed; key and legacy deletions propagate.
type deleteTarget struct {
	key      string
	tolerant bool
}

// Delete removes all four objects of a secret, best-effort and
// concurrently, following the per-object tolerance policy above.
func (v *Vault) Delete(ctx context.Context, name string) error {
	if err := v.ensureCredentials(ctx); err != nil {
		return err
	}

	objects := layout.Objects(v.prefix, name)
	v.logger.Debug("deleting secret", zap.String("name", name))

	targets := []deleteTarget{
		{key: objects.Key},
		{key: objects.Legacy},
		{key: objects.Authenticated, tolerant: true},
		{key: objects.Meta, tolerant: true},
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs = make(errsx.Map)
	)
	for _, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := v.storage.Delete(ctx, v.bucket, target.key)
			if err == nil {
				return
			}
			if target.tolerant {
				v.logger.Warn("ignoring delete failure for optional object",
					zap.String("object", target.key), zap.Error(err))
				return
			}
			mu.Lock()
			errs.Set(target.key, err)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if err := errs.AsError(); err != nil {
		return fmt.Errorf("failed to delete secret %q: %w", name, err)
	}
	return nil
}

// Exists reports whether a secret is present, checking the legacy
// ciphertext object as the canonical presence marker. Any failure,
// including credential resolution, reads as non-existence.
func (v *Vault) Exists(ctx context.Context, name string) bool {
	if err := v.ensureCredentials(ctx); err != nil {
		return false
	}

	objects := layout.Objects(v.prefix, name)
	ok, err := v.storage.Head(ctx, v.bucket, objects.Legacy)
	if err != nil {
		v.logger.Warn("existence check failed, reporting absent",
			zap.String("name", name), zap.Error(err))
		return false
	}
	return ok
}

// All returns the sorted names of every secret in the bucket, derived
// from the legacy ciphertext objects under the configured prefix.
//
// Only the first listing page the storage service returns is examined,
// so buckets exceeding one page are reported incompletely. Secrets whose
// name ends in ".aesgcm" are omitted: their legacy object key collides
// with another secret's authenticated object key, so the listing cannot
// tell them apart.
func (v *Vault) All(ctx context.Context) ([]string, error) {
	if err := v.ensureCredentials(ctx); err != nil {
		return nil, err
	}

	keys, err := v.storage.List(ctx, v.bucket, v.prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}

	var names []string
	for _, key := range keys {
		if name, ok := layout.SecretName(key, v.prefix); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// DirectWrap encrypts data directly under the master key, bypassing the
// envelope object layout. It requires a key-management service that
// implements DirectKeyManagement.
func (v *Vault) DirectWrap(ctx context.Context, data []byte) ([]byte, error) {
	if err := v.ensureCredentials(ctx); err != nil {
		return nil, err
	}

	direct, ok := v.kms.(DirectKeyManagement)
	if !ok {
		return nil, ErrDirectUnsupported
	}
	return direct.DirectEncrypt(ctx, v.key, data)
}

// DirectUnwrap decrypts a blob produced by DirectWrap (or any wrapped
// data key) via the key-management collaborator.
func (v *Vault) DirectUnwrap(ctx context.Context, blob []byte) ([]byte, error) {
	if err := v.ensureCredentials(ctx); err != nil {
		return nil, err
	}
	return v.kms.Decrypt(ctx, v.key, blob)
}
