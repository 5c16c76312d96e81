package archive

import "os"

// Config contains the object storage connection details for the image archive.
type Config struct {
	// Endpoint of the MinIO server, e.g. "localhost:9000".
	Endpoint string

	AccessKeyID     string
	SecretAccessKey string

	// UseSSL selects https transport to the server.
	UseSSL bool

	// Bucket holds the archived originals. Created on startup if missing.
	Bucket string

	// Region for bucket creation, e.g. "us-east-1".
	Region string
}

// NewConfig reads the archive configuration from the environment.
func NewConfig() Config {
	cfg := Config{
		Endpoint: "localhost:9000",
		Bucket:   "picsema-images",
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	cfg.AccessKeyID = os.Getenv("MINIO_ACCESS_KEY")
	cfg.SecretAccessKey = os.Getenv("MINIO_SECRET_KEY")
	cfg.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.Bucket = v
	}
	cfg.Region = os.Getenv("MINIO_REGION")
	return cfg
}

// Enabled reports whether credentials for an object store are configured.
// Without them the archive is disabled and originals are not kept.
func (c Config) Enabled() bool {
	return c.AccessKeyID != ""
}
