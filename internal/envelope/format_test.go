package envelope

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetadata(t *testing.T) {
	nonce := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

	meta := NewMetadata(nonce)
	assert.Equal(t, Algorithm, meta.Alg)

	decoded, err := base64.StdEncoding.DecodeString(meta.Nonce)
	require.NoError(t, err)
	assert.Equal(t, nonce, decoded)

	raw, err := meta.Marshal()
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "AESGCM", parsed["alg"])
}

func TestSelectFormat(t *testing.T) {
	validNonce := make([]byte, NonceSize)
	validMeta, err := NewMetadata(validNonce).Marshal()
	require.NoError(t, err)

	tests := []struct {
		name          string
		meta          []byte
		found         bool
		authenticated bool
	}{
		{
			name:          "metadata present and valid",
			meta:          validMeta,
			found:         true,
			authenticated: true,
		},
		{
			name:  "metadata object absent",
			meta:  nil,
			found: false,
		},
		{
			name:  "metadata not JSON",
			meta:  []byte("not-json"),
			found: true,
		},
		{
			name:  "metadata without nonce field",
			meta:  []byte(`{"alg":"AESGCM"}`),
			found: true,
		},
		{
			name:  "nonce not base64",
			meta:  []byte(`{"alg":"AESGCM","nonce":"***"}`),
			found: true,
		},
		{
			name:  "nonce wrong length",
			meta:  []byte(`{"alg":"AESGCM","nonce":"` + base64.StdEncoding.EncodeToString([]byte("short")) + `"}`),
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := SelectFormat(tt.meta, tt.found)

			assert.Equal(t, tt.authenticated, format.Authenticated)
			if tt.authenticated {
				assert.Equal(t, validNonce, format.Nonce)
				assert.Equal(t, tt.meta, format.AAD)
			} else {
				assert.Nil(t, format.Nonce)
				assert.Nil(t, format.AAD)
			}
		})
	}
}
