package nlu

import (
	"context"
	"errors"
	"testing"

	"concierge/app/service/intent"
	"concierge/app/service/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBackend simulates an unreachable LLM backend.
type failingBackend struct{}

var errUnavailable = errors.New("backend unavailable")

func (failingBackend) ClassifyIntent(context.Context, string, []store.TurnRecord) (intent.Intent, error) {
	return intent.None, errUnavailable
}

func (failingBackend) ExtractFields(context.Context, string, intent.Intent, []store.TurnRecord, map[string]string) (map[string]string, error) {
	return nil, errUnavailable
}

func (failingBackend) ClassifySwitch(context.Context, string, intent.Intent) (bool, error) {
	return false, errUnavailable
}

func TestServiceFallsBackToRules(t *testing.T) {
	svc := &Service{primary: failingBackend{}, rules: NewRuleBackend()}
	ctx := context.Background()

	got, err := svc.ClassifyIntent(ctx, "send an email to john", nil)
	require.NoError(t, err)
	assert.Equal(t, intent.SendEmail, got)

	fields, err := svc.ExtractFields(ctx, "email john@example.com saying hello", intent.SendEmail, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", fields["recipient"])
	assert.Equal(t, "hello", fields["body"])

	switched, err := svc.ClassifySwitch(ctx, "actually book a meeting", intent.SendEmail)
	require.NoError(t, err)
	assert.False(t, switched)
}

func TestServiceWithoutPrimaryUsesRules(t *testing.T) {
	svc := &Service{rules: NewRuleBackend()}

	got, err := svc.ClassifyIntent(context.Background(), "book a meeting", nil)
	require.NoError(t, err)
	assert.Equal(t, intent.ScheduleMeeting, got)
}

func TestTrimFences(t *testing.T) {
	assert.Equal(t, `{"title":"x"}`, trimFences("```json\n{\"title\":\"x\"}\n```"))
	assert.Equal(t, `{"title":"x"}`, trimFences(`{"title":"x"}`))
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "No recent messages", formatHistory(nil))

	history := []store.TurnRecord{
		{UserMessage: "a", AssistantResponse: "b"},
		{UserMessage: "c", AssistantResponse: "d"},
		{UserMessage: "e", AssistantResponse: "f"},
		{UserMessage: "g", AssistantResponse: "h"},
	}
	formatted := formatHistory(history)
	assert.NotContains(t, formatted, "User: a")
	assert.Contains(t, formatted, "User: c")
	assert.Contains(t, formatted, "Assistant: h")
}
