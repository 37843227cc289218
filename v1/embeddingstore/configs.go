package embeddingstore

import "os"

// Config controls the filesystem store.
type Config struct {
	// Dir is the directory holding one <name>.emb file per embedding.
	// Created if missing. Default: "embeddings".
	Dir string
}

// NewConfig reads the store configuration from environment variables.
func NewConfig() Config {
	cfg := Config{
		Dir: os.Getenv("AESTHETIC_EMBEDDINGS_DIR"),
	}
	if cfg.Dir == "" {
		cfg.Dir = "embeddings"
	}
	return cfg
}

// ObjectConfig controls the MinIO-backed store.
type ObjectConfig struct {
	// Endpoint is the MinIO server endpoint, e.g. "localhost:9000".
	Endpoint string

	// AccessKeyID and SecretAccessKey authenticate against the server.
	AccessKeyID     string
	SecretAccessKey string

	// UseSSL selects https toward the server.
	UseSSL bool

	// BucketName is the bucket holding the embeddings. Must exist.
	BucketName string

	// Prefix is the key prefix under which embeddings are stored,
	// e.g. "aesthetic/". Default: "aesthetic-embeddings/".
	Prefix string
}

// NewObjectConfig reads the object-store configuration from environment
// variables.
func NewObjectConfig() ObjectConfig {
	cfg := ObjectConfig{
		Endpoint:        os.Getenv("AESTHETIC_MINIO_ENDPOINT"),
		AccessKeyID:     os.Getenv("AESTHETIC_MINIO_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("AESTHETIC_MINIO_SECRET_KEY"),
		UseSSL:          os.Getenv("AESTHETIC_MINIO_USE_SSL") == "true",
		BucketName:      os.Getenv("AESTHETIC_MINIO_BUCKET"),
		Prefix:          os.Getenv("AESTHETIC_MINIO_PREFIX"),
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "aesthetic-embeddings/"
	}
	return cfg
}
