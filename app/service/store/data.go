package store

import (
	"time"

	"concierge/app/service/intent"
)

// TurnRecord is one exchange appended to a session's conversation log. The
// log doubles as audit trail and as the context source for intent
// classification and cross-turn field merging.
type TurnRecord struct {
	SessionID            string            `json:"session_id"`
	UserMessage          string            `json:"user_message"`
	AssistantResponse    string            `json:"assistant_response"`
	Intent               intent.Intent     `json:"intent,omitempty"`
	Fields               map[string]string `json:"fields,omitempty"`
	AwaitingConfirmation bool              `json:"awaiting_confirmation"`
	Timestamp            time.Time         `json:"timestamp"`
}

// ActionRecord is an executed (or attempted) action appended to the global
// action log. Immutable once written.
type ActionRecord struct {
	SessionID  string            `json:"session_id"`
	ActionType string            `json:"action_type"`
	ActionData map[string]string `json:"action_data"`
	Executed   bool              `json:"executed"`
	Timestamp  time.Time         `json:"timestamp"`
}
