package parameters

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/aws/aws-sdk-go/service/ssm/ssmiface"
	"github.com/pkg/errors"
)

// SSMProvider resolves the SSM client on first use.
type SSMProvider interface {
	SSM() (ssmiface.SSMAPI, error)
}

// StaticSSM wraps an existing client as an SSMProvider.
func StaticSSM(api ssmiface.SSMAPI) SSMProvider {
	return staticSSM{api: api}
}

type staticSSM struct {
	api ssmiface.SSMAPI
}

func (s staticSSM) SSM() (ssmiface.SSMAPI, error) {
	return s.api, nil
}

// SSM reads parameters from AWS Systems Manager Parameter Store.
type SSM struct {
	provider SSMProvider
}

func NewSSM(p SSMProvider) *SSM {
	return &SSM{provider: p}
}

func (s *SSM) Parameter(ctx context.Context, name string, decrypt bool) (string, error) {
	api, err := s.provider.SSM()
	if err != nil {
		return "", err
	}
	out, err := api.GetParameterWithContext(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(decrypt),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == ssm.ErrCodeParameterNotFound {
			return "", errors.Wrapf(ErrParameterNotFound, "parameter %q: %s", name, aerr.Message())
		}
		return "", errors.Wrapf(err, "failed to get parameter %q", name)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.Errorf("parameter %q has no value", name)
	}
	return *out.Parameter.Value, nil
}
