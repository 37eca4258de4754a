package alarm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
)

// Keys every CloudWatch alarm notification must carry.
const (
	KeyAlarmName      = "AlarmName"
	KeyNewStateValue  = "NewStateValue"
	KeyNewStateReason = "NewStateReason"
)

// Alarm is the part of a CloudWatch alarm notification that gets forwarded.
type Alarm struct {
	Name     string
	NewState string
	Reason   string
	// Message is the notification exactly as received.
	Message []byte
}

// ParseEvent extracts the alarm from the first record of an SNS event.
func ParseEvent(event events.SNSEvent) (*Alarm, error) {
	if len(event.Records) == 0 {
		return nil, errors.New("sns event has no records")
	}
	return ParseMessage([]byte(event.Records[0].SNS.Message))
}

// ParseMessage decodes an alarm notification. Only the presence of the
// required keys is checked.
func ParseMessage(message []byte) (*Alarm, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(message, &fields); err != nil {
		return nil, errors.Wrap(err, "invalid alarm message")
	}
	values := make(map[string]string, 3)
	for _, key := range []string{KeyAlarmName, KeyNewStateValue, KeyNewStateReason} {
		v, ok := fields[key]
		if !ok {
			return nil, errors.Errorf("alarm message is missing %q", key)
		}
		if s, ok := v.(string); ok {
			values[key] = s
		} else {
			values[key] = fmt.Sprint(v)
		}
	}
	return &Alarm{
		Name:     values[KeyAlarmName],
		NewState: values[KeyNewStateValue],
		Reason:   values[KeyNewStateReason],
		Message:  message,
	}, nil
}

// Text renders the chat message for the alarm, with the full notification
// pretty printed in a code block.
func (a *Alarm) Text(source string) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, a.Message, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(a.Message)
	}
	return fmt.Sprintf(":fire: *%s* state is now *%s*: %s from %s\n```\n%s```",
		a.Name, a.NewState, a.Reason, source, pretty.String())
}
