package slack

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/slack-go/slack"
)

type Diagnostic interface {
	InsecureSkipVerify()
}

// HTTPError is returned when the webhook answered with a non success status.
type HTTPError struct {
	Code   int
	Reason string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("webhook returned %d %s", e.Code, e.Reason)
}

type Service struct {
	channel  string
	username string
	client   *http.Client
	diag     Diagnostic
}

func NewService(c Config, d Diagnostic) *Service {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if c.InsecureSkipVerify {
		d.InsecureSkipVerify()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &Service{
		channel:  c.Channel,
		username: c.Username,
		client: &http.Client{
			Transport: tr,
			Timeout:   time.Duration(c.Timeout),
		},
		diag: d,
	}
}

func (s *Service) Open() error {
	return nil
}

func (s *Service) Close() error {
	return nil
}

// Post sends text to the webhook at url in a single attempt.
// A non success response is reported as *HTTPError, any other failure
// means the webhook could not be reached.
func (s *Service) Post(ctx context.Context, url, text string) error {
	if err := ValidateURL(url); err != nil {
		return err
	}
	msg := &slack.WebhookMessage{
		Channel:  s.channel,
		Username: s.username,
		Text:     text,
	}
	err := slack.PostWebhookCustomHTTPContext(ctx, url, s.client, msg)
	if err == nil {
		return nil
	}
	var sce slack.StatusCodeError
	if errors.As(err, &sce) {
		return &HTTPError{Code: sce.Code, Reason: reason(sce.Code, sce.Status)}
	}
	var rle *slack.RateLimitedError
	if errors.As(err, &rle) {
		return &HTTPError{Code: http.StatusTooManyRequests, Reason: http.StatusText(http.StatusTooManyRequests)}
	}
	return errors.Wrap(err, "failed to reach webhook")
}

// reason strips the numeric code from an http status line.
func reason(code int, status string) string {
	prefix := fmt.Sprintf("%d ", code)
	if len(status) > len(prefix) && status[:len(prefix)] == prefix {
		return status[len(prefix):]
	}
	if status == "" {
		return http.StatusText(code)
	}
	return status
}
