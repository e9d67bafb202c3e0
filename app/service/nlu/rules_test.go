package nlu

import (
	"context"
	"testing"

	"concierge/app/service/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleClassifyIntent(t *testing.T) {
	b := NewRuleBackend()
	ctx := context.Background()

	cases := []struct {
		text string
		want intent.Intent
	}{
		{"I want to schedule a meeting", intent.ScheduleMeeting},
		{"Book an appointment for me", intent.ScheduleMeeting},
		{"send an email to john", intent.SendEmail},
		{"I have a message for sara", intent.SendEmail},
		{"hello there", intent.Chitchat},
		{"what's the weather like", intent.Chitchat},
	}

	for _, tc := range cases {
		got, err := b.ClassifyIntent(ctx, tc.text, nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "text: %s", tc.text)
	}
}

func TestRuleExtractMeeting(t *testing.T) {
	b := NewRuleBackend()

	fields, err := b.ExtractFields(context.Background(),
		"Book a meeting with Sam tomorrow at 3pm", intent.ScheduleMeeting, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Sam", fields["title"])
	assert.Equal(t, "tomorrow", fields["date"])
	assert.Equal(t, "3pm", fields["time"])
}

func TestRuleExtractMeetingParticipants(t *testing.T) {
	b := NewRuleBackend()

	fields, err := b.ExtractFields(context.Background(),
		"invite sam@example.com and kim@example.com today at 10:30", intent.ScheduleMeeting, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "sam@example.com, kim@example.com", fields["participants"])
	assert.Equal(t, "today", fields["date"])
	assert.Equal(t, "10:30", fields["time"])
}

func TestRuleExtractEmail(t *testing.T) {
	b := NewRuleBackend()

	fields, err := b.ExtractFields(context.Background(),
		"email john@example.com saying hello", intent.SendEmail, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "john@example.com", fields["recipient"])
	assert.Equal(t, "hello", fields["body"])
}

func TestRuleExtractChitchatEmpty(t *testing.T) {
	b := NewRuleBackend()

	fields, err := b.ExtractFields(context.Background(), "hello", intent.Chitchat, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestRuleClassifySwitchAlwaysNo(t *testing.T) {
	b := NewRuleBackend()

	got, err := b.ClassifySwitch(context.Background(), "actually never mind", intent.SendEmail)
	require.NoError(t, err)
	assert.False(t, got)
}

