package run

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/nesq/resumecount/services/alarm"
	"github.com/nesq/resumecount/services/awsclient"
	"github.com/nesq/resumecount/services/counter"
	"github.com/nesq/resumecount/services/httpd"
	"github.com/nesq/resumecount/services/logging"
	"github.com/nesq/resumecount/services/slack"
	"github.com/nesq/resumecount/services/storage"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes the environment overrides of the daemon's config.
// Unprefixed names such as TABLE_NAME or LOG_LEVEL are honoured as well.
const EnvPrefix = "COUNTERD"

// Config represents the configuration format for the counterd binary.
type Config struct {
	HTTP    httpd.Config     `toml:"http"`
	Storage storage.Config   `toml:"storage"`
	Counter counter.Config   `toml:"counter"`
	Logging logging.Config   `toml:"logging"`
	AWS     awsclient.Config `toml:"aws"`
	Slack   slack.Config     `toml:"slack"`
	Alarm   alarm.Config     `toml:"alarm"`
}

// NewConfig returns an instance of Config with reasonable defaults.
func NewConfig() *Config {
	c := &Config{
		HTTP:    httpd.NewConfig(),
		Storage: storage.NewConfig(),
		Counter: counter.NewConfig(),
		Logging: logging.NewConfig(),
		AWS:     awsclient.NewConfig(),
		Slack:   slack.NewConfig(),
		Alarm:   alarm.NewConfig(),
	}
	c.Storage.Backend = storage.BackendBolt
	c.Logging.Encoding = "console"
	return c
}

// NewDemoConfig returns the config that runs when no config is specified.
// The bolt database lives in the current user's home directory.
func NewDemoConfig() (*Config, error) {
	c := NewConfig()

	var homeDir string
	u, err := user.Current()
	if err == nil {
		homeDir = u.HomeDir
	} else if os.Getenv("HOME") != "" {
		homeDir = os.Getenv("HOME")
	} else {
		return nil, fmt.Errorf("failed to determine current user for storage")
	}
	c.Storage.BoltDBPath = filepath.Join(homeDir, ".counterd", "counterd.db")
	return c, nil
}

// ParseConfig parses the config at path on top of the demo config.
// The demo config is returned as is when path is blank.
func ParseConfig(path string) (*Config, error) {
	c, err := NewDemoConfig()
	if err != nil {
		c = NewConfig()
	}
	if path == "" {
		return c, nil
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return c, nil
}

// ApplyEnvOverrides applies any environment variables on top of the config.
func (c *Config) ApplyEnvOverrides() error {
	return envconfig.Process(EnvPrefix, c)
}

// Validate returns an error if the config is invalid.
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return errors.Wrap(err, "http")
	}
	if err := c.Storage.Validate(); err != nil {
		return errors.Wrap(err, "storage")
	}
	if err := c.Counter.Validate(); err != nil {
		return errors.Wrap(err, "counter")
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, "logging")
	}
	if err := c.AWS.Validate(); err != nil {
		return errors.Wrap(err, "aws")
	}
	if err := c.Slack.Validate(); err != nil {
		return errors.Wrap(err, "slack")
	}
	if err := c.Alarm.Validate(); err != nil {
		return errors.Wrap(err, "alarm")
	}
	return nil
}

// LoadConfig parses the config at path, applies the environment and validates the result.
func LoadConfig(path string) (*Config, error) {
	c, err := ParseConfig(path)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnvOverrides(); err != nil {
		return nil, errors.Wrap(err, "apply env config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
