package dialogue

import (
	"context"
	"log/slog"
	"strings"

	"concierge/app/service/intent"

	"github.com/elliotchance/pie/v2"
)

var (
	meetingKeywords = []string{"book", "schedule", "meeting", "appointment", "call"}
	emailKeywords   = []string{"send", "email", "mail", "message"}
)

// isSwitch decides whether text abandons the in-progress task for the other
// one. Keyword fast path first; otherwise the backend is asked. Any backend
// failure means no switch: discarding gathered fields on an uncertain signal
// is worse than asking one question too many.
func (s *Service) isSwitch(ctx context.Context, text string, current intent.Intent) bool {
	if !intent.IsTask(current) {
		return false
	}

	lower := strings.ToLower(text)

	switch current {
	case intent.SendEmail:
		if containsAny(lower, meetingKeywords) {
			return true
		}
	case intent.ScheduleMeeting:
		if containsAny(lower, emailKeywords) {
			return true
		}
	}

	switched, err := s.backend.ClassifySwitch(ctx, text, current)
	if err != nil {
		slog.Warn("Switch classification failed, keeping current task", "error", err)
		return false
	}

	return switched
}

func containsAny(lower string, words []string) bool {
	return pie.Any(words, func(word string) bool {
		return strings.Contains(lower, word)
	})
}
