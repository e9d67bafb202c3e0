// Package action executes confirmed intents: it appends a record to the
// global action log, drops a standalone artifact in the outbox and returns
// the user-facing success message. Persistence is fire-and-forget: a storage
// failure is logged but never fails the user's turn.
package action

import (
	"fmt"
	"log/slog"
	"time"

	"concierge/app/service/intent"
	"concierge/app/service/store"

	"github.com/samber/do"
)

type Service struct {
	storeSvc *store.Service
	now      func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		storeSvc: do.MustInvoke[*store.Service](di),
		now:      time.Now,
	}, nil
}

// Execute records the action and returns the display message. It never fails.
func (s *Service) Execute(sessionID string, in intent.Intent, fields map[string]string) string {
	now := s.now()
	stamp := now.Format("20060102_150405")

	switch in {
	case intent.ScheduleMeeting:
		data := map[string]string{
			"type":         "meeting",
			"title":        fields["title"],
			"date":         fields["date"],
			"time":         fields["time"],
			"participants": fields["participants"],
			"created_at":   now.Format(time.RFC3339),
		}
		s.persist(sessionID, "meeting", data, "meeting_"+stamp)

		return fmt.Sprintf("Meeting '%s' has been booked for %s at %s. Details saved to files.",
			fields["title"], fields["date"], fields["time"])

	case intent.SendEmail:
		subject := fields["subject"]
		if subject == "" {
			subject = "No subject"
		}

		data := map[string]string{
			"type":       "email",
			"recipient":  fields["recipient"],
			"subject":    subject,
			"body":       fields["body"],
			"created_at": now.Format(time.RFC3339),
		}
		s.persist(sessionID, "email", data, "email_"+stamp)

		return fmt.Sprintf("Email sent to %s. Details saved to files.", fields["recipient"])
	}

	return "Action completed."
}

func (s *Service) persist(sessionID, actionType string, data map[string]string, artifact string) {
	err := s.storeSvc.AppendAction(store.ActionRecord{
		SessionID:  sessionID,
		ActionType: actionType,
		ActionData: data,
		Executed:   true,
		Timestamp:  s.now(),
	})
	if err != nil {
		slog.Error("Failed to append action record", "type", actionType, "error", err)
	}

	if err = s.storeSvc.WriteOutbox(artifact, data); err != nil {
		slog.Error("Failed to write outbox artifact", "artifact", artifact, "error", err)
	}
}
