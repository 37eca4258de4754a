package counter_test

import (
	"testing"

	"github.com/nesq/resumecount/services/counter"
)

func TestResolveMethod(t *testing.T) {
	testCases := []struct {
		name  string
		event string
		exp   string
	}{
		{name: "rest api v1", event: `{"httpMethod": "POST"}`, exp: "POST"},
		{name: "http api v2", event: `{"requestContext": {"http": {"method": "OPTIONS"}}}`, exp: "OPTIONS"},
		{name: "v1 wins over v2", event: `{"httpMethod": "PUT", "requestContext": {"http": {"method": "POST"}}}`, exp: "PUT"},
		{name: "empty v1 falls through", event: `{"httpMethod": "", "requestContext": {"http": {"method": "POST"}}}`, exp: "POST"},
		{name: "v1 with malformed context", event: `{"httpMethod": "POST", "requestContext": "oops"}`, exp: "POST"},
		{name: "empty object", event: `{}`, exp: "GET"},
		{name: "unrelated object", event: `{"some_key": 123}`, exp: "GET"},
		{name: "non string method", event: `{"httpMethod": 42}`, exp: "GET"},
		{name: "null", event: `null`, exp: "GET"},
		{name: "string", event: `"POST"`, exp: "GET"},
		{name: "array", event: `[{"httpMethod": "POST"}]`, exp: "GET"},
		{name: "invalid json", event: `{"httpMethod": `, exp: "GET"},
		{name: "empty input", event: ``, exp: "GET"},
		{name: "context without http", event: `{"requestContext": {}}`, exp: "GET"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := counter.ResolveMethod([]byte(tc.event)); got != tc.exp {
				t.Errorf("unexpected method: got %q exp %q", got, tc.exp)
			}
		})
	}
}

func TestResolveMethod_Nil(t *testing.T) {
	if got := counter.ResolveMethod(nil); got != "GET" {
		t.Errorf("unexpected method: got %q exp GET", got)
	}
}
