package counter

import (
	"fmt"
)

const DefaultAllowedOrigin = "*"

type Config struct {
	// Value of the Access-Control-Allow-Origin header.
	AllowedOrigin string `toml:"allowed-origin" envconfig:"ALLOWED_ORIGIN"`
	// Create a zero record when a read finds none.
	CreateOnRead bool `toml:"create-on-read" envconfig:"CREATE_ON_READ"`
}

func NewConfig() Config {
	return Config{
		AllowedOrigin: DefaultAllowedOrigin,
	}
}

func (c Config) Validate() error {
	if c.AllowedOrigin == "" {
		return fmt.Errorf("must specify allowed-origin, use %q to allow any origin", DefaultAllowedOrigin)
	}
	return nil
}
