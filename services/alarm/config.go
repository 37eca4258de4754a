package alarm

import "fmt"

// WebhookParameter names the parameter holding the Slack webhook URL.
const WebhookParameter = "slackwebhookurl"

const DefaultSource = "Nesq"

type Config struct {
	// Label appended to every forwarded message to identify the sender.
	Source string `toml:"source" envconfig:"ALARM_SOURCE"`
}

func NewConfig() Config {
	return Config{
		Source: DefaultSource,
	}
}

func (c Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("must specify alarm source")
	}
	return nil
}
