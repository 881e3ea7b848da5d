package envelope

import (
	"encoding/base64"
	"encoding/json"
)

// Metadata is the JSON document stored as the metadata object. Its raw
// marshaled bytes are the AAD of the authenticated ciphertext, so the
// stored document must never be re-encoded before decryption.
type Metadata struct {
	Alg   string `json:"alg"`
	Nonce string `json:"nonce"`
}

// NewMetadata builds the metadata document for a freshly drawn GCM nonce.
func NewMetadata(nonce []byte) Metadata {
	return Metadata{
		Alg:   Algorithm,
		Nonce: base64.StdEncoding.EncodeToString(nonce),
	}
}

// Marshal encodes the document to the exact bytes written to storage.
func (m Metadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Format tells the codec which decryption path applies to a stored
// secret. It is produced once per lookup by SelectFormat and threaded
// through, instead of re-checking metadata presence at every branch.
type Format struct {
	// Authenticated is true when the metadata object exists and carries
	// a usable nonce; false selects the legacy path.
	Authenticated bool

	// Nonce is the GCM nonce recovered from metadata. Nil for legacy.
	Nonce []byte

	// AAD is the raw metadata object body. Nil for legacy.
	AAD []byte
}

// SelectFormat decides the format of a stored secret from the outcome of
// the metadata object fetch. A missing metadata object (found == false)
// is the normal marker of a pre-authenticated-format secret, not an
// error; an unparseable document or an invalid nonce likewise falls back
// to the legacy path.
func SelectFormat(meta []byte, found bool) Format {
	if !found {
		return Format{}
	}

	var m Metadata
	if err := json.Unmarshal(meta, &m); err != nil {
		return Format{}
	}

	nonce, err := base64.StdEncoding.DecodeString(m.Nonce)
	if err != nil || len(nonce) != NonceSize {
		return Format{}
	}

	return Format{
		Authenticated: true,
		Nonce:         nonce,
		AAD:           meta,
	}
}
