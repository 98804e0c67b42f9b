package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from environment variables using `env` struct tags.
// cfg must be a pointer to a struct.
//
// Example:
//
//	type Config struct {
//	    Port      int           `env:"HTTP_PORT" envDefault:"8080"`
//	    JWTSecret string        `env:"JWT_ACCESS_TOKEN_SECRET,required"`
//	    Expiry    time.Duration `env:"JWT_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
