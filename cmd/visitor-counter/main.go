// Command visitor-counter is the Lambda function behind the visitor counter API.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/nesq/resumecount/services/awsclient"
	"github.com/nesq/resumecount/services/counter"
	"github.com/nesq/resumecount/services/diagnostic"
	"github.com/nesq/resumecount/services/logging"
	"github.com/nesq/resumecount/services/storage"
	"github.com/pkg/errors"
)

// Config is read from the function's environment.
type Config struct {
	AWS     awsclient.Config
	Storage storage.Config
	Counter counter.Config
	Logging logging.Config
}

func NewConfig() Config {
	return Config{
		AWS:     awsclient.NewConfig(),
		Storage: storage.NewConfig(),
		Counter: counter.NewConfig(),
		Logging: logging.NewConfig(),
	}
}

func (c Config) Validate() error {
	if err := c.AWS.Validate(); err != nil {
		return errors.Wrap(err, "aws")
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
	storageService := storage.NewService(c.Storage, awsClient, diag.NewStorageHandler())
	if err := storageService.Open(); err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer storageService.Close()

	svc := counter.NewService(c.Counter, storageService.Store(), diag.NewCounterHandler())
	lambda.Start(svc.Handle)
	return nil
}
