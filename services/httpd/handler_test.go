package httpd_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/nesq/resumecount/services/counter"
	"github.com/nesq/resumecount/services/diagnostic"
	"github.com/nesq/resumecount/services/httpd"
	"github.com/nesq/resumecount/services/storage"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var diag = diagnostic.NewService(nil)

type server struct {
	*httptest.Server
	registry *prometheus.Registry
}

func newServer(t *testing.T, h httpd.EventHandler) *server {
	registry := prometheus.NewRegistry()
	s := httptest.NewServer(httpd.NewHandler(true, h, registry, diag.NewHTTPDHandler()))
	t.Cleanup(s.Close)
	return &server{Server: s, registry: registry}
}

func newCounterServer(t *testing.T) *server {
	store := storage.NewMemStore("visitors")
	return newServer(t, counter.NewService(counter.NewConfig(), store, diag.NewCounterHandler()))
}

func (s *server) do(t *testing.T, method, path string) (*http.Response, string) {
	req, err := http.NewRequest(method, s.URL+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHandler_Visitor(t *testing.T) {
	s := newCounterServer(t)

	resp, body := s.do(t, http.MethodGet, httpd.VisitorPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "0", body)

	for _, exp := range []string{"1", "2"} {
		resp, body = s.do(t, http.MethodPost, httpd.VisitorPath)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, exp, body)
	}

	resp, body = s.do(t, http.MethodGet, httpd.VisitorPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "2", body)
	require.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET,POST,OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))
	require.NotEmpty(t, resp.Header.Get("Request-Id"))
}

func TestHandler_VisitorOptions(t *testing.T) {
	s := newCounterServer(t)

	resp, body := s.do(t, http.MethodOptions, httpd.VisitorPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, body)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	_, body = s.do(t, http.MethodGet, httpd.VisitorPath)
	require.Equal(t, "0", body)
}

func TestHandler_Ping(t *testing.T) {
	s := newCounterServer(t)

	resp, body := s.do(t, http.MethodGet, httpd.PingPath)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Empty(t, body)

	resp, _ = s.do(t, http.MethodHead, httpd.PingPath)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHandler_NotFound(t *testing.T) {
	s := newCounterServer(t)

	resp, body := s.do(t, http.MethodGet, "/kapacitor")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.JSONEq(t, `{"error":"Not Found"}`, body)
}

func TestHandler_Metrics(t *testing.T) {
	s := newCounterServer(t)

	s.do(t, http.MethodPost, httpd.VisitorPath)
	s.do(t, http.MethodPost, httpd.VisitorPath)
	s.do(t, http.MethodGet, httpd.VisitorPath)
	s.do(t, http.MethodGet, "/missing")

	exp := `
# HELP counterd_requests_total Number of HTTP requests served, by method and status code.
# TYPE counterd_requests_total counter
counterd_requests_total{method="GET",status="200"} 1
counterd_requests_total{method="GET",status="404"} 1
counterd_requests_total{method="POST",status="200"} 2
`
	require.NoError(t, testutil.GatherAndCompare(s.registry, strings.NewReader(exp), "counterd_requests_total"))

	resp, body := s.do(t, http.MethodGet, httpd.MetricsPath)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "counterd_request_duration_seconds_count 4")
}

type eventHandlerFunc func(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error)

func (f eventHandlerFunc) Handle(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	return f(ctx, event)
}

func TestHandler_VisitorEvent(t *testing.T) {
	received := make(chan events.APIGatewayProxyRequest, 1)
	s := newServer(t, eventHandlerFunc(func(_ context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
		var e events.APIGatewayProxyRequest
		if err := json.Unmarshal(event, &e); err != nil {
			return events.APIGatewayProxyResponse{}, err
		}
		received <- e
		return events.APIGatewayProxyResponse{
			StatusCode:        http.StatusAccepted,
			Headers:           map[string]string{"X-Single": "one"},
			MultiValueHeaders: map[string][]string{"X-Multi": {"a", "b"}},
			Body:              "done",
		}, nil
	}))

	req, err := http.NewRequest(http.MethodPost, s.URL+httpd.VisitorPath+"?page=home", strings.NewReader("payload"))
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, "done", string(body))
	require.Equal(t, "one", resp.Header.Get("X-Single"))
	require.Equal(t, []string{"a", "b"}, resp.Header.Values("X-Multi"))

	got := <-received
	require.Equal(t, http.MethodPost, got.HTTPMethod)
	require.Equal(t, http.MethodPost, got.RequestContext.HTTPMethod)
	require.Equal(t, httpd.VisitorPath, got.Path)
	require.Equal(t, "home", got.QueryStringParameters["page"])
	require.Equal(t, "payload", got.Body)
	require.Equal(t, "https://example.com", got.Headers["Origin"])
	require.Equal(t, httpd.Stage, got.RequestContext.Stage)
	require.Equal(t, resp.Header.Get("Request-Id"), got.RequestContext.RequestID)
	require.Equal(t, "127.0.0.1", got.RequestContext.Identity.SourceIP)
}

func TestHandler_VisitorHandlerError(t *testing.T) {
	s := newServer(t, eventHandlerFunc(func(context.Context, json.RawMessage) (events.APIGatewayProxyResponse, error) {
		return events.APIGatewayProxyResponse{}, errors.New("boom")
	}))

	resp, body := s.do(t, http.MethodGet, httpd.VisitorPath)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.JSONEq(t, `{"error":"boom"}`, body)
}

func TestHandler_Recovery(t *testing.T) {
	s := newServer(t, eventHandlerFunc(func(context.Context, json.RawMessage) (events.APIGatewayProxyResponse, error) {
		panic("unexpected")
	}))

	resp, body := s.do(t, http.MethodGet, httpd.VisitorPath)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.JSONEq(t, `{"error":"internal error"}`, body)
}
