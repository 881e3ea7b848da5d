// Package hashivault provides a key-management collaborator backed by
// the HashiCorp Vault Transit Engine, for deployments that wrap data
// keys outside AWS KMS.
//
// The Transit Engine must be enabled before use:
//
//	vault secrets enable transit
package hashivault

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/hashicorp/vault/api"

	"github.com/Jalle19/vault"
)

const defaultMount = "transit"

// TransitService implements vault.KeyManagementService using the Vault
// Transit Engine. The keyID passed to its methods is the transit key
// name; unlike AWS KMS blobs, transit ciphertext does not identify its
// key, so the name is required on decryption too.
type TransitService struct {
	client *api.Client
	mount  string
}

// Config holds configuration for the Transit service.
type Config struct {
	// Address of the Vault server. If empty, VAULT_ADDR is used.
	Address string

	// Token used for authentication. If empty, VAULT_TOKEN is used.
	Token string

	// Mount path of the Transit Engine. Default: "transit".
	Mount string
}

// New creates a new TransitService.
func New(cfg Config) (*TransitService, error) {
	apiConfig := api.DefaultConfig()
	if cfg.Address != "" {
		apiConfig.Address = cfg.Address
	}

	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	mount := cfg.Mount
	if mount == "" {
		mount = defaultMount
	}

	return &TransitService{
		client: client,
		mount:  mount,
	}, nil
}

// GenerateDataKey asks the Transit Engine for a fresh AES-256 data key
// under the named key, returning the plaintext key material and the
// transit-formatted ciphertext (e.g. "vault:v1:base64...").
func (t *TransitService) GenerateDataKey(ctx context.Context, keyID string) ([]byte, []byte, error) {
	if keyID == "" {
		return nil, nil, fmt.Errorf("%w: keyID cannot be empty", vault.ErrInvalidConfiguration)
	}

	resp, err := t.client.Logical().WriteWithContext(ctx,
		fmt.Sprintf("%s/datakey/plaintext/%s", t.mount, keyID),
		map[string]interface{}{
			"bits": 256,
		})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate data key with transit key '%s': %w", keyID, err)
	}
	if resp == nil || resp.Data == nil {
		return nil, nil, fmt.Errorf("no response from Vault Transit datakey")
	}

	plaintextBase64, ok := resp.Data["plaintext"].(string)
	if !ok {
		return nil, nil, fmt.Errorf("plaintext not found in response")
	}
	ciphertext, ok := resp.Data["ciphertext"].(string)
	if !ok {
		return nil, nil, fmt.Errorf("ciphertext not found in response")
	}

	plaintext, err := base64.StdEncoding.DecodeString(plaintextBase64)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode plaintext: %w", err)
	}

	return plaintext, []byte(ciphertext), nil
}

// Decrypt unwraps a data key using the named transit key.
func (t *TransitService) Decrypt(ctx context.Context, keyID string, wrapped []byte) ([]byte, error) {
	if len(wrapped) == 0 {
		return nil, fmt.Errorf("wrapped key cannot be empty")
	}
	if keyID == "" {
		return nil, fmt.Errorf("%w: keyID cannot be empty", vault.ErrInvalidConfiguration)
	}

	resp, err := t.client.Logical().WriteWithContext(ctx,
		fmt.Sprintf("%s/decrypt/%s", t.mount, keyID),
		map[string]interface{}{
			"ciphertext": string(wrapped),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt with transit key '%s': %w", keyID, err)
	}
	if resp == nil || resp.Data == nil {
		return nil, fmt.Errorf("no response from Vault Transit decrypt")
	}

	plaintextBase64, ok := resp.Data["plaintext"].(string)
	if !ok {
		return nil, fmt.Errorf("plaintext not found in response")
	}

	plaintext, err := base64.StdEncoding.DecodeString(plaintextBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode plaintext: %w", err)
	}

	return plaintext, nil
}

// DirectEncrypt encrypts caller data directly with the named transit
// key, without the envelope object layout.
func (t *TransitService) DirectEncrypt(ctx context.Context, keyID string, plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("plaintext cannot be empty")
	}
	if keyID == "" {
		return nil, fmt.Errorf("%w: keyID cannot be empty", vault.ErrInvalidConfiguration)
	}

	resp, err := t.client.Logical().WriteWithContext(ctx,
		fmt.Sprintf("%s/encrypt/%s", t.mount, keyID),
		map[string]interface{}{
			"plaintext": base64.StdEncoding.EncodeToString(plaintext),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt with transit key '%s': %w", keyID, err)
	}
	if resp == nil || resp.Data == nil {
		return nil, fmt.Errorf("no response from Vault Transit encrypt")
	}

	ciphertext, ok := resp.Data["ciphertext"].(string)
	if !ok {
		return nil, fmt.Errorf("ciphertext not found in response")
	}

	return []byte(ciphertext), nil
}
