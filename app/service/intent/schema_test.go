package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingOrder(t *testing.T) {
	missing := Missing(ScheduleMeeting, nil)
	assert.Equal(t, []string{"title", "date", "time", "participants"}, missing)

	missing = Missing(ScheduleMeeting, map[string]string{
		"title": "Budget review",
		"time":  "3pm",
	})
	assert.Equal(t, []string{"date", "participants"}, missing)
}

func TestMissingBlankCountsAsMissing(t *testing.T) {
	missing := Missing(SendEmail, map[string]string{
		"recipient": "   ",
		"body":      "hello",
	})
	assert.Equal(t, []string{"recipient"}, missing)
}

func TestMissingIgnoresOptionalSubject(t *testing.T) {
	missing := Missing(SendEmail, map[string]string{
		"recipient": "john@example.com",
		"body":      "hello",
	})
	assert.Empty(t, missing)
}

func TestNextQuestion(t *testing.T) {
	q, ok := NextQuestion(ScheduleMeeting, []string{"date", "participants"})
	assert.True(t, ok)
	assert.Equal(t, "What date would you like to schedule this meeting?", q)

	_, ok = NextQuestion(ScheduleMeeting, nil)
	assert.False(t, ok)
}

func TestConfirmationMeeting(t *testing.T) {
	msg := Confirmation(ScheduleMeeting, map[string]string{
		"title":        "Budget review",
		"date":         "2024-03-05",
		"time":         "3pm",
		"participants": "sam@example.com",
	})
	assert.Equal(t, "Do you want me to book 'Budget review' on 2024-03-05 at 3pm with sam@example.com?", msg)
}

func TestConfirmationEmailOptionalSubject(t *testing.T) {
	msg := Confirmation(SendEmail, map[string]string{
		"recipient": "john@example.com",
		"body":      "hello",
	})
	assert.Equal(t, "Do you want me to send an email to john@example.com saying: 'hello'?", msg)

	msg = Confirmation(SendEmail, map[string]string{
		"recipient": "john@example.com",
		"subject":   "Greetings",
		"body":      "hello",
	})
	assert.Equal(t, "Do you want me to send an email to john@example.com with subject 'Greetings' saying: 'hello'?", msg)
}

func TestIsTask(t *testing.T) {
	assert.True(t, IsTask(ScheduleMeeting))
	assert.True(t, IsTask(SendEmail))
	assert.False(t, IsTask(Chitchat))
	assert.False(t, IsTask(None))
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(SendEmail, "subject"))
	assert.False(t, Known(SendEmail, "participants"))
	assert.True(t, Known(ScheduleMeeting, "participants"))
}
