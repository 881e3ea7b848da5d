package vault

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Jalle19/vault/internal/layout"
)

// Config holds the construction-time inputs of a Vault.
//
// This struct contains only data, no behavior. Configuration can come
// from code, the environment (ConfigFromEnv) or a YAML file
// (LoadConfigFile) and is passed explicitly to New.
//
// Required fields:
//   - Bucket: the storage container holding the vault objects
//   - Key: the key-management key identifier used to wrap data keys
//
// Optional fields:
//   - Region: forwarded to the storage/key-management providers; falls
//     back to AWS_REGION / AWS_DEFAULT_REGION when empty
//   - Prefix: object key prefix; normalized to end with "/"
type Config struct {
	// Bucket is the name of the storage container.
	Bucket string `yaml:"bucket"`

	// Key identifies the key-management key that wraps data keys. For
	// AWS KMS this is a key ID, ARN or alias; for Vault Transit it is
	// the transit key name.
	Key string `yaml:"key"`

	// Region is the provider region. Optional.
	Region string `yaml:"region"`

	// Prefix namespaces all object keys within the bucket. Optional.
	Prefix string `yaml:"prefix"`
}

// Validate checks required fields and applies defaults: the region is
// resolved from the environment when empty, and the prefix is normalized
// to end with a single "/".
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("%w: Bucket is required", ErrInvalidConfiguration)
	}
	if c.Key == "" {
		return fmt.Errorf("%w: Key is required", ErrInvalidConfiguration)
	}

	if c.Region == "" {
		if region := os.Getenv(EnvRegion); region != "" {
			c.Region = region
		} else {
			c.Region = os.Getenv(EnvDefaultRegion)
		}
	}

	c.Prefix = layout.NormalizePrefix(c.Prefix)
	return nil
}

// ConfigFromEnv builds a Config from VAULT_BUCKET, VAULT_KEY and
// VAULT_PREFIX. A .env file in the working directory is loaded first
// when present; a missing file is not an error.
func ConfigFromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Bucket: os.Getenv(EnvBucket),
		Key:    os.Getenv(EnvKey),
		Prefix: os.Getenv(EnvPrefix),
	}
}

// LoadConfigFile reads a Config from a YAML file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfiguration, path, err)
	}
	return cfg, nil
}
