package counter

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DefaultMethod is used when an event does not carry a usable method.
const DefaultMethod = "GET"

// requestEvent covers both API Gateway payload shapes:
// httpMethod for REST APIs and requestContext.http.method for HTTP APIs.
type requestEvent struct {
	HTTPMethod     json.RawMessage `json:"httpMethod"`
	RequestContext struct {
		HTTP struct {
			Method json.RawMessage `json:"method"`
		} `json:"http"`
	} `json:"requestContext"`
}

// ResolveMethod extracts the HTTP method from a raw request event.
// It never fails: anything that is not an object carrying a non empty
// string method resolves to DefaultMethod.
func ResolveMethod(event []byte) string {
	var e requestEvent
	if err := json.Unmarshal(event, &e); err != nil {
		// Fields of the wrong type are skipped, the rest are still usable.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return DefaultMethod
		}
	}
	if m := stringValue(e.HTTPMethod); m != "" {
		return m
	}
	if m := stringValue(e.RequestContext.HTTP.Method); m != "" {
		return m
	}
	return DefaultMethod
}

func stringValue(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
