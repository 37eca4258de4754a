// Package parameters looks up secret configuration values by name.
package parameters

import (
	"context"

	"github.com/pkg/errors"
)

var ErrParameterNotFound = errors.New("parameter not found")

// Interface returns the value of a named parameter.
// When decrypt is set, encrypted values are returned in plain text.
type Interface interface {
	Parameter(ctx context.Context, name string, decrypt bool) (string, error)
}

// Static serves parameters from a fixed map. It backs local runs and tests.
type Static map[string]string

func (s Static) Parameter(_ context.Context, name string, _ bool) (string, error) {
	v, ok := s[name]
	if !ok {
		return "", errors.Wrapf(ErrParameterNotFound, "parameter %q", name)
	}
	return v, nil
}
