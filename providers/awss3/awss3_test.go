package awss3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jalle19/vault"
)

// mockS3Client implements s3Client for testing
type mockS3Client struct {
	getObjectFunc     func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	putObjectFunc     func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	deleteObjectFunc  func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	headObjectFunc    func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	listObjectsV2Func func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return m.getObjectFunc(ctx, params, optFns...)
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putObjectFunc(ctx, params, optFns...)
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return m.deleteObjectFunc(ctx, params, optFns...)
}

func (m *mockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return m.headObjectFunc(ctx, params, optFns...)
}

func (m *mockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return m.listObjectsV2Func(ctx, params, optFns...)
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := &Store{client: &mockS3Client{
			getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				assert.Equal(t, "bucket", aws.ToString(params.Bucket))
				assert.Equal(t, "db-pass.key", aws.ToString(params.Key))
				return &s3.GetObjectOutput{
					Body: io.NopCloser(strings.NewReader("wrapped-blob")),
				}, nil
			},
		}}

		body, err := store.Get(ctx, "bucket", "db-pass.key")
		require.NoError(t, err)
		assert.Equal(t, []byte("wrapped-blob"), body)
	})

	t.Run("missing object maps to not found", func(t *testing.T) {
		store := &Store{client: &mockS3Client{
			getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, &types.NoSuchKey{}
			},
		}}

		_, err := store.Get(ctx, "bucket", "db-pass.key")
		assert.True(t, vault.IsNotFound(err))
		assert.Contains(t, err.Error(), "db-pass.key")
	})

	t.Run("other errors propagate", func(t *testing.T) {
		store := &Store{client: &mockS3Client{
			getObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				return nil, errors.New("connection reset")
			},
		}}

		_, err := store.Get(ctx, "bucket", "db-pass.key")
		require.Error(t, err)
		assert.False(t, vault.IsNotFound(err))
	})
}

func TestPut(t *testing.T) {
	ctx := context.Background()

	var got []byte
	store := &Store{client: &mockS3Client{
		putObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, types.ObjectCannedACLPrivate, params.ACL)
			var err error
			got, err = io.ReadAll(params.Body)
			require.NoError(t, err)
			return &s3.PutObjectOutput{}, nil
		},
	}}

	require.NoError(t, store.Put(ctx, "bucket", "db-pass.encrypted", []byte("ciphertext")))
	assert.Equal(t, []byte("ciphertext"), got)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := &Store{client: &mockS3Client{
			deleteObjectFunc: func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
				return &s3.DeleteObjectOutput{}, nil
			},
		}}

		assert.NoError(t, store.Delete(ctx, "bucket", "db-pass.key"))
	})

	t.Run("failure", func(t *testing.T) {
		store := &Store{client: &mockS3Client{
			deleteObjectFunc: func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
				return nil, errors.New("access denied")
			},
		}}

		assert.ErrorContains(t, store.Delete(ctx, "bucket", "db-pass.key"), "failed to delete")
	})
}

func TestHead(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		store := &Store{client: &mockS3Client{
			headObjectFunc: func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
				return &s3.HeadObjectOutput{}, nil
			},
		}}

		found, err := store.Head(ctx, "bucket", "db-pass.encrypted")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("missing", func(t *testing.T) {
		store := &Store{client: &mockS3Client{
			headObjectFunc: func(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
				return nil, &types.NotFound{}
			},
		}}

		found, err := store.Head(ctx, "bucket", "db-pass.encrypted")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	store := &Store{client: &mockS3Client{
		listObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "prod/", aws.ToString(params.Prefix))
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{Key: aws.String("prod/a.encrypted")},
					{Key: aws.String("prod/a.key")},
				},
			}, nil
		},
	}}

	keys, err := store.List(ctx, "bucket", "prod/")
	require.NoError(t, err)
	assert.Equal(t, []string{"prod/a.encrypted", "prod/a.key"}, keys)
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"NoSuchKey", &types.NoSuchKey{}, true},
		{"NotFound", &types.NotFound{}, true},
		{"generic 404 code", &smithy.GenericAPIError{Code: "404"}, true},
		{"generic NoSuchKey code", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"access denied code", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}
