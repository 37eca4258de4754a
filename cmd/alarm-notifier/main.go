// Command alarm-notifier is the Lambda function subscribed to the alarm
// SNS topic. It forwards every CloudWatch alarm to a Slack webhook.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/nesq/resumecount/services/alarm"
	"github.com/nesq/resumecount/services/awsclient"
	"github.com/nesq/resumecount/services/diagnostic"
	"github.com/nesq/resumecount/services/logging"
	"github.com/nesq/resumecount/services/parameters"
	"github.com/nesq/resumecount/services/slack"
	"github.com/pkg/errors"
)

// Config is read from the function's environment.
type Config struct {
	AWS     awsclient.Config
	Slack   slack.Config
	Alarm   alarm.Config
	Logging logging.Config
}

func NewConfig() Config {
	return Config{
		AWS:     awsclient.NewConfig(),
		Slack:   slack.NewConfig(),
		Alarm:   alarm.NewConfig(),
		Logging: logging.NewConfig(),
	}
}

func (c Config) Validate() error {
	if err := c.AWS.Validate(); err != nil {
		return errors.Wrap(err, "aws")
	}
	if err := c.Slack.Validate(); err != nil {
		return errors.Wrap(err, "slack")
	}
	if err := c.Alarm.Validate(); err != nil {
		return errors.Wrap(err, "alarm")
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, "logging")
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	c := NewConfig()
	if err := envconfig.Process("", &c); err != nil {
		return errors.Wrap(err, "read environment")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	logService := logging.NewService(c.Logging, os.Stdout, os.Stderr)
	if err := logService.Open(); err != nil {
		return errors.Wrap(err, "init logging")
	}
	defer logService.Close()
	diag := diagnostic.NewService(logService.Root())

	awsClient := awsclient.New(c.AWS)
	params := parameters.NewSSM(awsClient)
	slackService := slack.NewService(c.Slack, diag.NewSlackHandler())

	svc := alarm.NewService(c.Alarm, params, slackService, diag.NewAlarmHandler())
	lambda.Start(svc.Handle)
	return nil
}
