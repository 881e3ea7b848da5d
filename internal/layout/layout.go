// Package layout maps logical secret names to the four physical object
// keys that together represent one stored secret, and back. All four
// objects live in a single bucket, under an optional key prefix.
package layout

import "strings"

const (
	// KeySuffix marks the wrapped data key object.
	KeySuffix = ".key"

	// LegacySuffix marks the legacy CTR ciphertext object. It is also
	// the canonical presence marker for a secret: existence checks and
	// listings operate on it.
	LegacySuffix = ".encrypted"

	// AuthenticatedSuffix marks the GCM ciphertext object. Note that it
	// also ends with LegacySuffix, so listings must exclude it
	// explicitly.
	AuthenticatedSuffix = ".aesgcm.encrypted"

	// MetaSuffix marks the metadata object. Its presence is what makes
	// a stored secret authenticated-format.
	MetaSuffix = ".meta"
)

// ObjectSet holds the four object keys of one secret.
type ObjectSet struct {
	Key           string
	Legacy        string
	Authenticated string
	Meta          string
}

// Objects returns the object keys for a secret name under the given
// (already normalized) prefix.
func Objects(prefix, name string) ObjectSet {
	base := prefix + name
	return ObjectSet{
		Key:           base + KeySuffix,
		Legacy:        base + LegacySuffix,
		Authenticated: base + AuthenticatedSuffix,
		Meta:          base + MetaSuffix,
	}
}

// NormalizePrefix ensures a non-empty prefix ends with a single "/". An
// empty prefix stays empty.
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/"
}

// SecretName recovers the logical secret name from a legacy ciphertext
// object key. It reports false for objects outside the prefix, for the
// other three object kinds, and for the authenticated ciphertext whose
// suffix happens to contain LegacySuffix.
//
// Names ending in ".aesgcm" are effectively reserved: the legacy object
// of a secret named "x.aesgcm" is byte-identical to the authenticated
// object of a secret named "x", so such names are excluded here and
// never appear in listings.
func SecretName(objectKey, prefix string) (string, bool) {
	key, ok := strings.CutPrefix(objectKey, prefix)
	if !ok {
		return "", false
	}
	if strings.HasSuffix(key, AuthenticatedSuffix) {
		return "", false
	}
	name, ok := strings.CutSuffix(key, LegacySuffix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
