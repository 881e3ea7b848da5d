package vault

import "go.uber.org/zap"

// Option configures optional behavior of a Vault.
type Option func(*Vault)

// WithLogger sets a structured logger. The client is silent without one.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Vault) {
		v.logger = logger
	}
}

// WithCredentialResolver injects the credential collaborator checked at
// the start of every public operation. Without one, operations assume
// the providers carry usable credentials already.
func WithCredentialResolver(resolver CredentialResolver) Option {
	return func(v *Vault) {
		v.creds = resolver
	}
}
