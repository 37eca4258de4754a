package httpd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/influxdata/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	VisitorPath = "/visitor"
	MetricsPath = "/metrics"
	PingPath    = "/ping"

	// Stage reported in the request context of translated events.
	Stage = "local"

	maxBodySize = 1 << 20
)

// VisitorMethods are the methods routed to the counter.
var VisitorMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// EventHandler answers a raw API Gateway event, the way the Lambda
// runtime would invoke it.
type EventHandler interface {
	Handle(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error)
}

// Handler routes the daemon's HTTP API.
type Handler struct {
	router  *httprouter.Router
	counter EventHandler

	loggingEnabled bool
	diag           Diagnostic

	requests *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewHandler returns a handler with all routes registered. Request
// metrics are registered on registry and exposed on MetricsPath.
func NewHandler(loggingEnabled bool, counter EventHandler, registry *prometheus.Registry, d Diagnostic) *Handler {
	h := &Handler{
		router:         httprouter.New(),
		counter:        counter,
		loggingEnabled: loggingEnabled,
		diag:           d,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counterd",
			Name:      "requests_total",
			Help:      "Number of HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "counterd",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	registry.MustRegister(h.requests, h.duration)

	// OPTIONS is answered by the counter so that it carries its CORS headers.
	h.router.HandleOPTIONS = false
	h.router.NotFound = h.wrap(http.HandlerFunc(h.serve404))
	h.router.PanicHandler = h.panicHandler

	for _, method := range VisitorMethods {
		h.handle(method, VisitorPath, http.HandlerFunc(h.serveVisitor))
	}
	h.handle(http.MethodGet, PingPath, http.HandlerFunc(h.servePing))
	h.handle(http.MethodHead, PingPath, http.HandlerFunc(h.servePing))
	h.handle(http.MethodGet, MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: d.NewHTTPServerErrorLogger(),
	}))
	return h
}

func (h *Handler) handle(method, path string, handler http.Handler) {
	h.router.Handler(method, path, h.wrap(handler))
}

func (h *Handler) wrap(handler http.Handler) http.Handler {
	return requestID(h.instrument(handler))
}

// ServeHTTP responds to HTTP request to the handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) serve404(w http.ResponseWriter, r *http.Request) {
	HttpError(w, "Not Found", http.StatusNotFound)
}

func (h *Handler) panicHandler(w http.ResponseWriter, r *http.Request, rcv interface{}) {
	h.diag.Error("panic serving "+r.URL.Path, fmt.Errorf("%v", rcv))
	HttpError(w, "internal error", http.StatusInternalServerError)
}

func (h *Handler) servePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// serveVisitor translates the request into an API Gateway event and
// writes back the counter's response.
func (h *Handler) serveVisitor(w http.ResponseWriter, r *http.Request) {
	event, err := NewProxyRequest(r)
	if err != nil {
		HttpError(w, err.Error(), http.StatusBadRequest)
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		HttpError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp, err := h.counter.Handle(r.Context(), raw)
	if err != nil {
		h.diag.Error("counter handler failed", err)
		HttpError(w, err.Error(), http.StatusBadGateway)
		return
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	io.WriteString(w, resp.Body)
}

// NewProxyRequest builds the API Gateway proxy event for an HTTP request.
func NewProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return events.APIGatewayProxyRequest{}, fmt.Errorf("failed to read request body: %v", err)
	}
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}
	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for k := range query {
		params[k] = query.Get(k)
	}
	return events.APIGatewayProxyRequest{
		Resource:                        r.URL.Path,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         headers,
		MultiValueHeaders:               r.Header,
		QueryStringParameters:           params,
		MultiValueQueryStringParameters: query,
		Body:                            string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  r.Header.Get("Request-Id"),
			Stage:      Stage,
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  sourceIP(r.RemoteAddr),
				UserAgent: r.UserAgent(),
			},
		},
	}, nil
}

func sourceIP(remoteAddr string) string {
	if i := strings.LastIndex(remoteAddr, ":"); i > 0 {
		return strings.Trim(remoteAddr[:i], "[]")
	}
	return remoteAddr
}

// HttpError writes an error to the client in a standard format.
func HttpError(w http.ResponseWriter, err string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	b, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{Error: err})
	w.Write(b)
}

func requestID(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Set("Request-Id", uuid.New().String())
		w.Header().Set("Request-Id", r.Header.Get("Request-Id"))

		inner.ServeHTTP(w, r)
	})
}

// instrument counts and times every request, and logs it when enabled.
func (h *Handler) instrument(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		l := &responseLogger{w: w}
		inner.ServeHTTP(l, r)
		elapsed := time.Since(start)

		h.requests.WithLabelValues(r.Method, strconv.Itoa(l.Status())).Inc()
		h.duration.Observe(elapsed.Seconds())
		if h.loggingEnabled {
			h.diag.HTTP(r.Method, r.URL.RequestURI(), l.Status(), r.Header.Get("Request-Id"), elapsed)
		}
	})
}

// responseLogger records the status and size of a response.
type responseLogger struct {
	w      http.ResponseWriter
	status int
	size   int
}

func (l *responseLogger) Header() http.Header {
	return l.w.Header()
}

func (l *responseLogger) Write(b []byte) (int, error) {
	if l.status == 0 {
		l.status = http.StatusOK
	}
	n, err := l.w.Write(b)
	l.size += n
	return n, err
}

func (l *responseLogger) WriteHeader(status int) {
	if l.status == 0 {
		l.status = status
	}
	l.w.WriteHeader(status)
}

func (l *responseLogger) Flush() {
	if f, ok := l.w.(http.Flusher); ok {
		f.Flush()
	}
}

// Status returns the written status, 200 when nothing was written.
func (l *responseLogger) Status() int {
	if l.status == 0 {
		return http.StatusOK
	}
	return l.status
}
