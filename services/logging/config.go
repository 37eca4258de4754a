package logging

import (
	"fmt"
	"strings"
)

type Config struct {
	// STDERR, STDOUT or a file path.
	File string `toml:"file" envconfig:"LOG_FILE"`
	// One of DEBUG, INFO, WARN or ERROR.
	Level string `toml:"level" envconfig:"LOG_LEVEL"`
	// json or console.
	Encoding string `toml:"encoding" envconfig:"LOG_ENCODING"`
}

func NewConfig() Config {
	return Config{
		File:     "STDERR",
		Level:    "INFO",
		Encoding: "json",
	}
}

func (c Config) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	switch c.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log encoding %s", c.Encoding)
	}
	if strings.TrimSpace(c.File) == "" {
		return fmt.Errorf("must specify log file")
	}
	return nil
}
