package dialogue

import (
	"sync"

	"concierge/app/service/intent"
)

type Mode string

const (
	ModeIdle                 Mode = "idle"
	ModeGathering            Mode = "gathering"
	ModeAwaitingConfirmation Mode = "awaiting_confirmation"
)

// State is the mutable per-session dialogue state. Owned exclusively by its
// Session; all access goes through the session lock in Service.
type State struct {
	Intent        intent.Intent
	Fields        map[string]string
	Mode          Mode
	MissingFields []string
}

func (s *State) reset() {
	*s = State{Mode: ModeIdle, Fields: map[string]string{}}
}

// Session is one conversation. The turn log lives in the store, keyed by ID;
// the session object itself carries only the identifier and the live state.
type Session struct {
	// mu serializes turn processing: one turn is fully handled before the
	// next is accepted for the same session.
	mu sync.Mutex

	ID    string
	state State
}

// Snapshot is the read-only view of a session returned after every turn.
type Snapshot struct {
	SessionID     string            `json:"session_id"`
	Intent        intent.Intent     `json:"intent"`
	Mode          Mode              `json:"mode"`
	Fields        map[string]string `json:"fields"`
	MissingFields []string          `json:"missing_fields"`
}

func (s *Session) snapshot() Snapshot {
	fields := make(map[string]string, len(s.state.Fields))
	for key, value := range s.state.Fields {
		fields[key] = value
	}

	return Snapshot{
		SessionID:     s.ID,
		Intent:        s.state.Intent,
		Mode:          s.state.Mode,
		Fields:        fields,
		MissingFields: append([]string(nil), s.state.MissingFields...),
	}
}
