package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjects(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		secret string
		want   ObjectSet
	}{
		{
			name:   "no prefix",
			prefix: "",
			secret: "db-pass",
			want: ObjectSet{
				Key:           "db-pass.key",
				Legacy:        "db-pass.encrypted",
				Authenticated: "db-pass.aesgcm.encrypted",
				Meta:          "db-pass.meta",
			},
		},
		{
			name:   "with prefix",
			prefix: "prod/",
			secret: "db-pass",
			want: ObjectSet{
				Key:           "prod/db-pass.key",
				Legacy:        "prod/db-pass.encrypted",
				Authenticated: "prod/db-pass.aesgcm.encrypted",
				Meta:          "prod/db-pass.meta",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Objects(tt.prefix, tt.secret))
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "empty stays empty", prefix: "", want: ""},
		{name: "trailing slash added", prefix: "prod", want: "prod/"},
		{name: "existing slash kept", prefix: "prod/", want: "prod/"},
		{name: "duplicate slashes collapsed", prefix: "prod//", want: "prod/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePrefix(tt.prefix))
		})
	}
}

func TestSecretName(t *testing.T) {
	tests := []struct {
		name      string
		objectKey string
		prefix    string
		want      string
		ok        bool
	}{
		{
			name:      "legacy ciphertext object",
			objectKey: "db-pass.encrypted",
			want:      "db-pass",
			ok:        true,
		},
		{
			name:      "legacy object under prefix",
			objectKey: "prod/db-pass.encrypted",
			prefix:    "prod/",
			want:      "db-pass",
			ok:        true,
		},
		{
			name:      "authenticated ciphertext excluded",
			objectKey: "db-pass.aesgcm.encrypted",
		},
		{
			name:      "key object excluded",
			objectKey: "db-pass.key",
		},
		{
			name:      "metadata object excluded",
			objectKey: "db-pass.meta",
		},
		{
			name:      "object outside prefix excluded",
			objectKey: "staging/db-pass.encrypted",
			prefix:    "prod/",
		},
		{
			name:      "bare suffix excluded",
			objectKey: ".encrypted",
		},
		{
			// A secret literally named "x.aesgcm" produces the same
			// legacy object key as secret "x"'s authenticated object,
			// so such names are reserved and never listed.
			name:      "reserved aesgcm name excluded",
			objectKey: "x.aesgcm.encrypted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SecretName(tt.objectKey, tt.prefix)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
