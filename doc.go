// Package vault is a client for storing named secrets in an S3 bucket,
// protected with envelope encryption whose data keys are wrapped by AWS
// KMS (or HashiCorp Vault Transit).
//
// Each secret is written as four co-located objects:
//
//	{name}.key              wrapped data key
//	{name}.encrypted        legacy AES-256-CTR ciphertext (fixed nonce)
//	{name}.aesgcm.encrypted AES-256-GCM ciphertext with trailing tag
//	{name}.meta             JSON {"alg":"AESGCM","nonce":"<base64>"}
//
// Every Store produces both ciphertext layers from one fresh data key,
// so readers that predate the authenticated format keep working while
// new readers get tamper detection: the metadata bytes are the GCM
// additional authenticated data, binding ciphertext and metadata
// together. A secret without a metadata object is decrypted through the
// legacy path.
//
// # Quick start
//
//	cfg := vault.Config{Bucket: "my-vault", Key: "alias/my-vault-key"}
//
//	storage, err := awss3.New(ctx, awss3.Config{Region: "eu-west-1"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	kms, err := awskms.New(ctx, awskms.Config{Region: "eu-west-1"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := vault.New(cfg, storage, kms)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := v.Store(ctx, "db-pass", []byte("s3cr3t")); err != nil {
//	    log.Fatal(err)
//	}
//	plaintext, err := v.Lookup(ctx, "db-pass")
//
// # Error handling
//
// Operations fail with wrapped sentinel errors:
//
//	if vault.IsNotFound(err) {
//	    // secret or required object absent
//	}
//	if vault.IsIntegrityError(err) {
//	    // authenticated decryption failed; nothing was returned
//	}
//
// # Testing
//
// In-memory fakes build a fully working client without AWS access:
//
//	v, storage, err := vault.NewTestVault()
package vault
