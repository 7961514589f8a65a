package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"relay"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"relay_dev_password"`
	DBName     string `envconfig:"DB_NAME" default:"relay"`

	// Storage backend is a deployment-time choice, not a per-call one.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"local"`
	StorageRoot    string `envconfig:"STORAGE_ROOT" default:"./data/attachments"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3UseSSL    bool   `envconfig:"S3_USE_SSL" default:"true"`

	PresignExpirySeconds int `envconfig:"PRESIGN_EXPIRY_SECONDS" default:"600"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	switch cfg.StorageBackend {
	case BackendLocal, BackendS3:
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == BackendS3 && (cfg.S3Endpoint == "" || cfg.S3Bucket == "") {
		return nil, fmt.Errorf("s3 backend requires S3_ENDPOINT and S3_BUCKET")
	}

	return &cfg, nil
}
