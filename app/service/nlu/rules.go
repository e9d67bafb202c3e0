package nlu

import (
	"context"
	"regexp"
	"strings"

	"concierge/app/service/intent"
	"concierge/app/service/store"

	"github.com/elliotchance/pie/v2"
)

var (
	meetingWords = []string{"book", "schedule", "meeting", "appointment"}
	emailWords   = []string{"send", "email", "mail", "message"}

	emailAddrPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	timePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s*(?:am|pm)\b`),
		regexp.MustCompile(`\b\d{1,2}:\d{2}\b`),
	}

	titlePattern = regexp.MustCompile(`(?i)(?:book|schedule)\s+(?:a\s+)?(?:meeting\s+)?(?:with\s+)?([^.]+?)(?:\s+tomorrow|\s+today|\s+at|\s+with|\s*$)`)

	bodyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)saying\s+(.+)`),
		regexp.MustCompile(`(?i)\bthat\s+(.+)`),
		regexp.MustCompile(`(?i)message\s*:\s*(.+)`),
		regexp.MustCompile(`(?i)email\s+(.+?)(?:\s+to\b|\s*$)`),
	}
)

// RuleBackend is the deterministic keyword and pattern matcher used when the
// LLM backend is unavailable.
type RuleBackend struct{}

var _ Backend = (*RuleBackend)(nil)

func NewRuleBackend() *RuleBackend {
	return &RuleBackend{}
}

func (b *RuleBackend) ClassifyIntent(_ context.Context, text string, _ []store.TurnRecord) (intent.Intent, error) {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, meetingWords):
		return intent.ScheduleMeeting, nil
	case containsAny(lower, emailWords):
		return intent.SendEmail, nil
	default:
		return intent.Chitchat, nil
	}
}

func (b *RuleBackend) ExtractFields(_ context.Context, text string, in intent.Intent, _ []store.TurnRecord, _ map[string]string) (map[string]string, error) {
	switch in {
	case intent.ScheduleMeeting:
		return b.extractMeeting(text), nil
	case intent.SendEmail:
		return b.extractEmail(text), nil
	default:
		return nil, nil
	}
}

// ClassifySwitch always answers no: the rules cannot judge a topic change
// beyond the keyword fast path the caller already ran, and switching is a
// state-destroying decision that must stay conservative.
func (b *RuleBackend) ClassifySwitch(_ context.Context, _ string, _ intent.Intent) (bool, error) {
	return false, nil
}

func (b *RuleBackend) extractMeeting(text string) map[string]string {
	fields := map[string]string{}

	if emails := emailAddrPattern.FindAllString(text, -1); len(emails) > 0 {
		fields["participants"] = strings.Join(emails, ", ")
	}

	for _, pattern := range timePatterns {
		if match := pattern.FindString(text); match != "" {
			fields["time"] = match
			break
		}
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "tomorrow"):
		fields["date"] = "tomorrow"
	case strings.Contains(lower, "today"):
		fields["date"] = "today"
	case strings.Contains(lower, "next week"):
		fields["date"] = "next week"
	}

	if match := titlePattern.FindStringSubmatch(text); match != nil {
		title := strings.TrimSpace(match[1])
		if title != "" && !containsAny(strings.ToLower(title), []string{"tomorrow", "today", "at", "with"}) {
			fields["title"] = title
		}
	}

	return fields
}

func (b *RuleBackend) extractEmail(text string) map[string]string {
	fields := map[string]string{}

	if email := emailAddrPattern.FindString(text); email != "" {
		fields["recipient"] = email
	}

	for _, pattern := range bodyPatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			fields["body"] = strings.TrimSpace(match[1])
			break
		}
	}

	return fields
}

func containsAny(lower string, words []string) bool {
	return pie.Any(words, func(word string) bool {
		return strings.Contains(lower, word)
	})
}
