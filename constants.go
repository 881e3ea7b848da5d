package vault

// Environment variable names
const (
	// EnvBucket is the environment variable name for the S3 bucket
	// holding the vault objects.
	EnvBucket = "VAULT_BUCKET"

	// EnvKey is the environment variable name for the key-management
	// key identifier (AWS KMS key ID/ARN/alias, or a Transit key name).
	EnvKey = "VAULT_KEY"

	// EnvPrefix is the environment variable name for the optional
	// object key prefix within the bucket.
	EnvPrefix = "VAULT_PREFIX"

	// EnvRegion and EnvDefaultRegion are consulted in order when the
	// Config does not carry an explicit region.
	EnvRegion        = "AWS_REGION"
	EnvDefaultRegion = "AWS_DEFAULT_REGION"
)

// DataKeyLength is the required data key size in bytes (AES-256).
const DataKeyLength = 32
