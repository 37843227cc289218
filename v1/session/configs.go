package session

import "os"

// Config controls session construction.
type Config struct {
	// ModelID is the encoder identity requested from the provider.
	ModelID string
}

// NewConfig reads the session configuration from environment variables.
func NewConfig() Config {
	cfg := Config{
		ModelID: os.Getenv("AESTHETIC_ENCODER_MODEL"),
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "openai/clip-vit-large-patch14"
	}
	return cfg
}
