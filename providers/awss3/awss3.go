// Package awss3 provides the AWS S3 object-storage collaborator for the
// vault client.
//
// Storage-level "no such object" failures are translated into the vault
// sentinel vault.ErrNotFound so the client can apply its per-object
// tolerance policy.
package awss3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/Jalle19/vault"
)

// s3Client interface for the S3 operations used (allows mocking)
type s3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store implements vault.ObjectStorage using AWS S3.
type Store struct {
	client s3Client
	region string
}

// Config holds configuration for the S3 store.
type Config struct {
	// Region is the AWS region (e.g., "eu-west-1").
	// If empty, uses AWS_REGION environment variable or AWS config file.
	Region string

	// AWSConfig is an optional pre-configured AWS config.
	// If provided, Region is ignored.
	AWSConfig *aws.Config
}

// New creates a new S3 store.
//
// Usage:
//
//	// Using default AWS configuration
//	store, err := awss3.New(ctx, awss3.Config{})
//
//	// With custom AWS config
//	awsCfg, _ := config.LoadDefaultConfig(ctx)
//	store, err := awss3.New(ctx, awss3.Config{AWSConfig: &awsCfg})
func New(ctx context.Context, cfg Config) (*Store, error) {
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

	return &Store{
		client: s3.NewFromConfig(awsConfig),
		region: awsConfig.Region,
	}, nil
}

// Get returns the full body of an object, translating a missing object
// into vault.ErrNotFound.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, vault.NewObjectNotFoundError(key)
		}
		return nil, fmt.Errorf("failed to get object %q: %w", key, err)
	}
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %q: %w", key, err)
	}
	return body, nil
}

// Put writes an object with a private canned ACL.
func (s *Store) Put(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
		ACL:    types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %q: %w", key, err)
	}
	return nil
}

// Delete removes an object. S3 deletes are idempotent, so deleting an
// absent object succeeds; a backend that does report absence is still
// translated to vault.ErrNotFound.
func (s *Store) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return vault.NewObjectNotFoundError(key)
		}
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// Head reports whether an object exists without fetching its body.
func (s *Store) Head(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head object %q: %w", key, err)
	}
	return true, nil
}

// List returns the object keys under the prefix. Only the first listing
// page S3 returns is examined; no continuation tokens are followed.
func (s *Store) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	result, err := s.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket %q: %w", bucket, err)
	}

	keys := make([]string, 0, len(result.Contents))
	for _, object := range result.Contents {
		keys = append(keys, aws.ToString(object.Key))
	}
	return keys, nil
}

// Region returns the AWS region this store is configured for.
func (s *Store) Region() string {
	return s.region
}

// isNotFound matches the not-found shapes S3 produces: typed NoSuchKey
// on GetObject, typed NotFound on HeadObject, and the generic API error
// codes for everything else.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}
	return false
}
