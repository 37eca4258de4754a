package alarm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/nesq/resumecount/services/parameters"
	"github.com/nesq/resumecount/services/slack"
	"github.com/pkg/errors"
)

type Diagnostic interface {
	ReceivedAlarm(name, state string, message []byte)
	ParameterError(name string, err error)
	WebhookHTTPError(code int, reason string)
	WebhookConnectionError(err error)
	MessagePosted(name string)
}

// Poster delivers a chat message to a webhook.
type Poster interface {
	Post(ctx context.Context, url, text string) error
}

// Service forwards CloudWatch alarms to a Slack webhook.
type Service struct {
	source string
	params parameters.Interface
	poster Poster
	diag   Diagnostic
}

func NewService(c Config, params parameters.Interface, poster Poster, d Diagnostic) *Service {
	return &Service{
		source: c.Source,
		params: params,
		poster: poster,
		diag:   d,
	}
}

// Handle forwards the alarm carried by an SNS event.
//
// Only a malformed notification is reported as an error, so that the
// invocation fails and the runtime can retry it. Lookup and delivery
// failures are logged and swallowed; nothing is retried here.
func (s *Service) Handle(ctx context.Context, event events.SNSEvent) error {
	a, err := ParseEvent(event)
	if err != nil {
		return err
	}
	s.Forward(ctx, a)
	return nil
}

// Forward makes a single delivery attempt for the alarm.
func (s *Service) Forward(ctx context.Context, a *Alarm) {
	s.diag.ReceivedAlarm(a.Name, a.NewState, a.Message)
	text := a.Text(s.source)

	url, err := s.params.Parameter(ctx, WebhookParameter, true)
	if err != nil {
		s.diag.ParameterError(WebhookParameter, err)
		return
	}

	err = s.poster.Post(ctx, url, text)
	if err != nil {
		var herr *slack.HTTPError
		if errors.As(err, &herr) {
			s.diag.WebhookHTTPError(herr.Code, herr.Reason)
		} else {
			s.diag.WebhookConnectionError(err)
		}
		return
	}
	s.diag.MessagePosted(a.Name)
}

type testOptions struct {
	URL      string `json:"url"`
	Name     string `json:"alarm-name"`
	NewState string `json:"state"`
	Reason   string `json:"reason"`
}

func (s *Service) TestOptions() interface{} {
	return &testOptions{
		URL:      "http://localhost:3000/",
		Name:     "test-alarm",
		NewState: "OK",
		Reason:   "manual notification test",
	}
}

// Test posts a synthetic alarm directly to the URL in options,
// skipping the parameter lookup.
func (s *Service) Test(options interface{}) error {
	o, ok := options.(*testOptions)
	if !ok {
		return fmt.Errorf("unexpected options type %T", options)
	}
	message, err := json.Marshal(map[string]string{
		KeyAlarmName:      o.Name,
		KeyNewStateValue:  o.NewState,
		KeyNewStateReason: o.Reason,
	})
	if err != nil {
		return err
	}
	a, err := ParseMessage(message)
	if err != nil {
		return err
	}
	return s.poster.Post(context.Background(), o.URL, a.Text(s.source))
}
