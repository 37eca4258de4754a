package httpd

import (
	"net"
	"strconv"
	"time"

	"github.com/nesq/resumecount/toml"
	"github.com/pkg/errors"
)

const (
	DefaultBindAddress     = ":9092"
	DefaultShutdownTimeout = toml.Duration(time.Second * 10)
)

type Config struct {
	BindAddress     string        `toml:"bind-address" envconfig:"HTTP_BIND_ADDRESS"`
	LogEnabled      bool          `toml:"log-enabled" envconfig:"HTTP_LOG_ENABLED"`
	ShutdownTimeout toml.Duration `toml:"shutdown-timeout" envconfig:"HTTP_SHUTDOWN_TIMEOUT"`
}

func NewConfig() Config {
	return Config{
		BindAddress:     DefaultBindAddress,
		LogEnabled:      true,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

func (c Config) Validate() error {
	if _, err := c.Port(); err != nil {
		return err
	}
	if c.ShutdownTimeout < 0 {
		return errors.New("shutdown-timeout must not be negative")
	}
	return nil
}

// Port returns the port configured on the bind address.
func (c Config) Port() (int, error) {
	_, portStr, err := net.SplitHostPort(c.BindAddress)
	if err != nil {
		return -1, errors.Wrapf(err, "invalid bind-address %q", c.BindAddress)
	}
	port, err := strconv.ParseInt(portStr, 10, 32)
	if err != nil {
		return -1, errors.Wrapf(err, "invalid port number %q", portStr)
	}
	return int(port), nil
}
