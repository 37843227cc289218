package generator

import (
	"os"
	"strconv"
)

// Config controls embedding generation.
type Config struct {
	// ModelID is the encoder identity requested from the provider.
	ModelID string

	// DefaultBatchSize is used when a caller passes a batch size < 1.
	// Default: 8.
	DefaultBatchSize int
}

// NewConfig reads the generator configuration from environment variables.
func NewConfig() Config {
	cfg := Config{
		ModelID: os.Getenv("AESTHETIC_ENCODER_MODEL"),
	}
	if v := os.Getenv("AESTHETIC_GENERATOR_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultBatchSize = n
		}
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "openai/clip-vit-large-patch14"
	}
	if cfg.DefaultBatchSize <= 0 {
		cfg.DefaultBatchSize = 8
	}
	return cfg
}
