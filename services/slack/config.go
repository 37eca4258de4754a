package slack

import (
	"net/url"

	"github.com/nesq/resumecount/toml"
	"github.com/pkg/errors"
)

type Config struct {
	// Optional channel override, the webhook's own channel is used when empty.
	Channel string `toml:"channel" envconfig:"SLACK_CHANNEL"`
	// Optional username override.
	Username string `toml:"username" envconfig:"SLACK_USERNAME"`
	// Timeout of a single webhook post. Zero leaves the request bounded only by its context.
	Timeout toml.Duration `toml:"timeout" envconfig:"SLACK_TIMEOUT"`
	// Whether to skip the tls verification of the webhook host.
	InsecureSkipVerify bool `toml:"insecure-skip-verify" envconfig:"SLACK_INSECURE_SKIP_VERIFY"`
}

func NewConfig() Config {
	return Config{}
}

func (c Config) Validate() error {
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// ValidateURL checks that a webhook URL is usable for posting.
func ValidateURL(u string) error {
	if u == "" {
		return errors.New("webhook url is empty")
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return errors.Wrapf(err, "invalid url %q", u)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.Errorf("invalid url %q: unsupported scheme", u)
	}
	return nil
}
