package run

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// FindConfigPath returns the config path specified or searches for a valid config path.
// It will return a path by searching in this order:
//  1. The given configPath
//  2. The environment variable COUNTERD_CONFIG_PATH
//  3. The first non empty counterd.conf file in ~/.counterd/ or /etc/counterd/
func FindConfigPath(configPath string) string {
	if configPath != "" {
		if configPath == os.DevNull {
			return ""
		}
		return configPath
	} else if envVar := os.Getenv("COUNTERD_CONFIG_PATH"); envVar != "" {
		return envVar
	}

	for _, path := range []string{
		os.ExpandEnv("${HOME}/.counterd/counterd.conf"),
		"/etc/counterd/counterd.conf",
	} {
		if fi, err := os.Stat(path); err == nil && fi.Size() != 0 {
			return path
		}
	}
	return ""
}

// PrintConfig writes the effective configuration as TOML.
func PrintConfig(w io.Writer, configPath string) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("%s. To generate a valid configuration file run `counterd config > counterd.generated.conf`.", err)
	}
	if err := toml.NewEncoder(w).Encode(config); err != nil {
		return err
	}
	fmt.Fprint(w, "\n")
	return nil
}
