// Package awskms provides the AWS KMS key-management collaborator for
// the vault client: per-secret data keys are generated and unwrapped by
// KMS, so raw master key material never leaves the service.
package awskms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/Jalle19/vault"
)

// kmsClient interface for the KMS operations used (allows mocking)
type kmsClient interface {
	GenerateDataKey(ctx context.Context, params *kms.GenerateDataKeyInput, optFns ...func(*kms.Options)) (*kms.GenerateDataKeyOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
}

// KMSService implements vault.KeyManagementService using AWS KMS.
type KMSService struct {
	client kmsClient
	region string
}

// Config holds configuration for the AWS KMS service.
type Config struct {
	// Region is the AWS region (e.g., "eu-west-1").
	// If empty, uses AWS_REGION environment variable or AWS config file.
	Region string

	// AWSConfig is an optional pre-configured AWS config.
	// If provided, Region is ignored.
	AWSConfig *aws.Config
}

// New creates a new AWS KMS service instance.
//
// Usage:
//
//	// Using default AWS configuration
//	kmsService, err := awskms.New(ctx, awskms.Config{})
//
//	// With specific region
//	kmsService, err := awskms.New(ctx, awskms.Config{Region: "eu-west-1"})
func New(ctx context.Context, cfg Config) (*KMSService, error) {
	var awsConfig aws.Config
	var err error

	if cfg.AWSConfig != nil {
		awsConfig = *cfg.AWSConfig
	} else {
		opts := []func(*config.LoadOptions) error{}
		if cfg.Region != "" {
			opts = append(opts, config.WithRegion(cfg.Region))
		}

		awsConfig, err = config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
	}

	return &KMSService{
		client: kms.NewFromConfig(awsConfig),
		region: awsConfig.Region,
	}, nil
}

// GenerateDataKey requests a fresh AES-256 data key under the given KMS
// key, returning both the plaintext key material and the ciphertext blob
// that gets persisted as the key object.
//
// The keyID can be:
//   - Key ID: "1234abcd-12ab-34cd-56ef-1234567890ab"
//   - Key ARN: "arn:aws:kms:eu-west-1:123456789012:key/1234abcd-..."
//   - Alias name: "alias/my-key"
func (k *KMSService) GenerateDataKey(ctx context.Context, keyID string) ([]byte, []byte, error) {
	if keyID == "" {
		return nil, nil, fmt.Errorf("%w: keyID cannot be empty", vault.ErrInvalidConfiguration)
	}

	result, err := k.client.GenerateDataKey(ctx, &kms.GenerateDataKeyInput{
		KeyId:   aws.String(keyID),
		KeySpec: types.DataKeySpecAes256,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate data key with KMS key %s: %w", keyID, err)
	}

	if result.Plaintext == nil || result.CiphertextBlob == nil {
		return nil, nil, fmt.Errorf("no key material returned from KMS")
	}

	return result.Plaintext, result.CiphertextBlob, nil
}

// Decrypt unwraps a data key that was wrapped by GenerateDataKey. KMS
// ciphertext blobs carry their own key metadata, so keyID is optional
// and only forwarded when set.
func (k *KMSService) Decrypt(ctx context.Context, keyID string, wrapped []byte) ([]byte, error) {
	if len(wrapped) == 0 {
		return nil, fmt.Errorf("wrapped key cannot be empty")
	}

	input := &kms.DecryptInput{
		CiphertextBlob: wrapped,
	}
	if keyID != "" {
		input.KeyId = aws.String(keyID)
	}

	result, err := k.client.Decrypt(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt data key: %w", err)
	}

	if result.Plaintext == nil {
		return nil, fmt.Errorf("no plaintext returned from KMS")
	}

	return result.Plaintext, nil
}

// DirectEncrypt encrypts caller data directly under the KMS key, without
// the envelope object layout. KMS limits direct payloads to 4 KiB.
func (k *KMSService) DirectEncrypt(ctx context.Context, keyID string, plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, fmt.Errorf("plaintext cannot be empty")
	}
	if keyID == "" {
		return nil, fmt.Errorf("%w: keyID cannot be empty", vault.ErrInvalidConfiguration)
	}

	result, err := k.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:     aws.String(keyID),
		Plaintext: plaintext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt with KMS key %s: %w", keyID, err)
	}

	if result.CiphertextBlob == nil {
		return nil, fmt.Errorf("no ciphertext returned from KMS")
	}

	return result.CiphertextBlob, nil
}

// Region returns the AWS region this KMS service is configured for.
func (k *KMSService) Region() string {
	return k.region
}
