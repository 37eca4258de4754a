// Package awsclient holds the process wide AWS session and service clients.
//
// Clients are created on first use and reused for the lifetime of the process.
// They are never closed.
package awsclient

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/pkg/errors"
)

type Client struct {
	c Config

	sessOnce sync.Once
	sess     *session.Session
	sessErr  error

	dynamoOnce sync.Once
	dynamo     dynamodbiface.DynamoDBAPI

	ssmOnce sync.Once
	ssm     ssmiface.SSMAPI
}

func New(c Config) *Client {
	return &Client{c: c}
}

func (c *Client) awsConfig() *aws.Config {
	conf := aws.NewConfig()
	if c.c.Region != "" {
		conf = conf.WithRegion(c.c.Region)
	}
	if c.c.Endpoint != "" {
		conf = conf.WithEndpoint(c.c.Endpoint)
	}
	if c.c.AccessKey != "" {
		conf = conf.WithCredentials(credentials.NewStaticCredentials(c.c.AccessKey, c.c.SecretKey, ""))
	}
	return conf
}

// Session returns the shared session, creating it on the first call.
// A failed creation is remembered and returned to every later caller.
func (c *Client) Session() (*session.Session, error) {
	c.sessOnce.Do(func() {
		c.sess, c.sessErr = session.NewSessionWithOptions(session.Options{
			Config:            *c.awsConfig(),
			SharedConfigState: session.SharedConfigEnable,
		})
		if c.sessErr != nil {
			c.sessErr = errors.Wrap(c.sessErr, "failed to create aws session")
		}
	})
	return c.sess, c.sessErr
}

// DynamoDB returns the shared DynamoDB client.
func (c *Client) DynamoDB() (dynamodbiface.DynamoDBAPI, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	c.dynamoOnce.Do(func() {
		c.dynamo = dynamodb.New(sess)
	})
	return c.dynamo, nil
}

// SSM returns the shared SSM client.
func (c *Client) SSM() (ssmiface.SSMAPI, error) {
	sess, err := c.Session()
	if err != nil {
		return nil, err
	}
	c.ssmOnce.Do(func() {
		c.ssm = ssm.New(sess)
	})
	return c.ssm, nil
}
