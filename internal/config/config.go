// Package config loads server configuration from environment variables.
//
// WHY envconfig?
// Reading each variable with os.Getenv scatters defaults and parsing all over
// main.go. envconfig declares the whole surface in one struct: the field tags
// name the variable, supply the default, and mark required values. One call
// to Process() validates everything up front, so a missing JWT_SECRET fails
// at startup instead of at the first login request.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full configuration surface of the diary server.
//
// JWTSecret is required — an unset secret would silently issue tokens anyone
// can forge. GeminiAPIKey is optional: without it the AI endpoints degrade to
// placeholder responses rather than refusing to start.
type Config struct {
	Port      int    `envconfig:"PORT" default:"8080"`
	DBPath    string `envconfig:"DB_PATH" default:"data/diary.db"`
	UploadDir string `envconfig:"UPLOAD_DIR" default:"uploads"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	// BcryptCost tunes password hashing work. The default follows the
	// package's recommendation; tests override it downward for speed.
	BcryptCost int `envconfig:"BCRYPT_COST" default:"12"`
}

// Load reads and validates the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	return &cfg, nil
}
