// Package awscreds provides the credential-resolver collaborator over
// the AWS default credential chain (shared config profile, environment
// variables, then the instance metadata service).
package awscreds

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/Jalle19/vault"
)

// Resolver implements vault.CredentialResolver with a resolve-once,
// cache-forever policy: the first EnsureResolved walks the credential
// chain, and its outcome is reused for every later call. There is no
// expiry or refresh handling at this layer.
type Resolver struct {
	provider aws.CredentialsProvider

	once sync.Once
	err  error
}

// New creates a Resolver over an already-loaded AWS config.
func New(cfg aws.Config) *Resolver {
	return &Resolver{provider: cfg.Credentials}
}

// NewFromDefaultChain loads the default AWS config (which sets up the
// full fallback chain) and wraps its credential provider.
func NewFromDefaultChain(ctx context.Context, region string) (*Resolver, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return New(cfg), nil
}

// EnsureResolved resolves credentials on first call and caches the
// outcome. A chain that yields no usable credentials fails with
// vault.ErrCredentials.
func (r *Resolver) EnsureResolved(ctx context.Context) error {
	r.once.Do(func() {
		if r.provider == nil {
			r.err = fmt.Errorf("%w: no credential provider configured", vault.ErrCredentials)
			return
		}
		if _, err := r.provider.Retrieve(ctx); err != nil {
			r.err = fmt.Errorf("%w: %v", vault.ErrCredentials, err)
		}
	})
	return r.err
}
