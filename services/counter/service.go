package counter

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"
	"github.com/nesq/resumecount/services/storage"
	"github.com/pkg/errors"
)

// RecordID is the key of the single counter record.
const RecordID = "visitor_count"

const (
	allowMethods = "GET,POST,OPTIONS"
	allowHeaders = "Content-Type"
)

type Diagnostic interface {
	StoreError(method string, err error)
	InitializedRecord(id string)
	Served(method string, status int, body string)
}

// Service answers visitor counter requests.
type Service struct {
	store        storage.Interface
	origin       string
	createOnRead bool
	diag         Diagnostic
}

func NewService(c Config, store storage.Interface, d Diagnostic) *Service {
	return &Service{
		store:        store,
		origin:       c.AllowedOrigin,
		createOnRead: c.CreateOnRead,
		diag:         d,
	}
}

// Handle serves one API Gateway event.
// Store failures are answered with a 500 response, so the returned error is always nil.
func (s *Service) Handle(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	method := ResolveMethod(event)
	resp := s.Serve(ctx, method)
	s.diag.Served(method, resp.StatusCode, resp.Body)
	return resp, nil
}

// Serve dispatches on an already resolved method.
func (s *Service) Serve(ctx context.Context, method string) events.APIGatewayProxyResponse {
	switch method {
	case http.MethodOptions:
		return s.response(http.StatusOK, "")
	case http.MethodPost:
		count, err := s.store.Increment(ctx, RecordID, 1)
		if err != nil {
			s.diag.StoreError(method, err)
			return s.response(http.StatusInternalServerError, "0")
		}
		return s.response(http.StatusOK, strconv.FormatInt(count, 10))
	default:
		count, err := s.read(ctx)
		if err != nil {
			s.diag.StoreError(method, err)
			return s.response(http.StatusInternalServerError, "0")
		}
		return s.response(http.StatusOK, strconv.FormatInt(count, 10))
	}
}

func (s *Service) read(ctx context.Context) (int64, error) {
	r, err := s.store.Get(ctx, RecordID)
	switch {
	case err == storage.ErrNoRecordExists:
		if !s.createOnRead {
			return 0, nil
		}
		// A zero increment creates the record without clobbering a
		// concurrent POST that got there first.
		count, err := s.store.Increment(ctx, RecordID, 0)
		if err != nil {
			return 0, errors.Wrap(err, "failed to initialize counter record")
		}
		s.diag.InitializedRecord(RecordID)
		return count, nil
	case err != nil:
		return 0, err
	}
	return r.Count, nil
}

// Headers returns the headers sent with every response.
func (s *Service) Headers() map[string]string {
	return map[string]string{
		"Content-Type":                 "text/plain",
		"Access-Control-Allow-Origin":  s.origin,
		"Access-Control-Allow-Methods": allowMethods,
		"Access-Control-Allow-Headers": allowHeaders,
	}
}

func (s *Service) response(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    s.Headers(),
		Body:       body,
	}
}
