package awsclient

import (
	"net/url"

	"github.com/pkg/errors"
)

type Config struct {
	// AWS region. When empty the SDK resolves it from the environment or shared config.
	Region string `toml:"region" envconfig:"AWS_REGION"`
	// Endpoint overrides the service endpoint, e.g. a local DynamoDB.
	Endpoint string `toml:"endpoint" envconfig:"AWS_ENDPOINT_URL"`
	// Static credentials. When empty the default credential chain is used.
	AccessKey string `toml:"access-key" ignored:"true"`
	SecretKey string `toml:"secret-key" ignored:"true"`
}

func NewConfig() Config {
	return Config{}
}

func (c Config) Validate() error {
	if c.Endpoint != "" {
		if _, err := url.Parse(c.Endpoint); err != nil {
			return errors.Wrapf(err, "invalid endpoint %q", c.Endpoint)
		}
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return errors.New("access-key and secret-key must be set together")
	}
	return nil
}
