package filestore

import (
	"time"

	"github.com/koustreak/tally/internal/errs"
)

// Config holds everything needed to reach the snapshot bucket.
type Config struct {
	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool `yaml:"use_ssl"`

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string `yaml:"region"`

	// Bucket receives snapshots. It must already exist.
	Bucket string `yaml:"bucket"`

	// URLTTL is how long presigned download links stay valid.
	URLTTL time.Duration `yaml:"url_ttl"`
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		Bucket:    "tally",
		URLTTL:    15 * time.Minute,
	}
}

// Validate reports a config no Store could use.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errs.New(errs.ErrKindInvalidInput, "snapshot endpoint is empty")
	}
	if c.Bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "snapshot bucket is empty")
	}
	if c.URLTTL <= 0 {
		return errs.New(errs.ErrKindInvalidInput, "snapshot url_ttl must be positive")
	}
	return nil
}
