// Package intent defines the task intents the assistant understands and the
// per-intent field requirement schema: which fields must be gathered, the
// question that elicits each one, and the confirmation message template.
package intent

import (
	"fmt"
	"strings"

	"github.com/elliotchance/pie/v2"
)

type Intent string

const (
	None            Intent = ""
	ScheduleMeeting Intent = "schedule_meeting"
	SendEmail       Intent = "send_email"
	Chitchat        Intent = "chitchat"
)

type fieldSpec struct {
	name     string
	question string
	optional bool
}

var schemas = map[Intent][]fieldSpec{
	ScheduleMeeting: {
		{name: "title", question: "What should I call this meeting?"},
		{name: "date", question: "What date would you like to schedule this meeting?"},
		{name: "time", question: "What time should the meeting be?"},
		{name: "participants", question: "Who should I invite to this meeting? Please provide their email addresses."},
	},
	SendEmail: {
		{name: "recipient", question: "Who should I send the email to? Please provide their email address."},
		{name: "subject", optional: true},
		{name: "body", question: "What should the email say?"},
	},
}

// IsTask reports whether i is an actionable intent, as opposed to chitchat or
// no intent at all.
func IsTask(i Intent) bool {
	_, ok := schemas[i]
	return ok
}

// Required returns the required field names for i in schema order.
func Required(i Intent) []string {
	specs := pie.Filter(schemas[i], func(f fieldSpec) bool {
		return !f.optional
	})

	return pie.Map(specs, func(f fieldSpec) string {
		return f.name
	})
}

// Known reports whether name is a schema field (required or optional) of i.
func Known(i Intent, name string) bool {
	return pie.Any(schemas[i], func(f fieldSpec) bool {
		return f.name == name
	})
}

// Missing returns, in schema order, every required field of i that is absent
// or blank in fields. Whitespace-only values count as missing.
func Missing(i Intent, fields map[string]string) []string {
	return pie.Filter(Required(i), func(name string) bool {
		return strings.TrimSpace(fields[name]) == ""
	})
}

// NextQuestion returns the elicitation question for the first missing field.
func NextQuestion(i Intent, missing []string) (string, bool) {
	if len(missing) == 0 {
		return "", false
	}

	for _, f := range schemas[i] {
		if f.name == missing[0] {
			return f.question, true
		}
	}

	return "", false
}

// Confirmation renders the yes/no prompt shown before executing i.
func Confirmation(i Intent, fields map[string]string) string {
	switch i {
	case ScheduleMeeting:
		msg := fmt.Sprintf("Do you want me to book '%s' on %s at %s",
			fields["title"], fields["date"], fields["time"])
		if fields["participants"] != "" {
			msg += " with " + fields["participants"]
		}
		return msg + "?"

	case SendEmail:
		msg := "Do you want me to send an email to " + fields["recipient"]
		if fields["subject"] != "" {
			msg += fmt.Sprintf(" with subject '%s'", fields["subject"])
		}
		return msg + fmt.Sprintf(" saying: '%s'?", fields["body"])
	}

	return "Do you want me to proceed with this action?"
}
