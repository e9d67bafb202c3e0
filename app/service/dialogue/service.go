// Package dialogue owns the per-session conversation state machine. Each
// turn moves a session between idle, gathering and awaiting_confirmation,
// merging newly extracted fields with ones gathered on earlier turns, until
// the user confirms and the action executes.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"concierge/app/service/action"
	"concierge/app/service/intent"
	"concierge/app/service/nlu"
	"concierge/app/service/store"
	"concierge/app/util/dates"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
	"github.com/samber/do"
)

// historyWindow is how many recent turns feed classification context and the
// cross-turn field merge.
const historyWindow = 5

var (
	affirmTokens = []string{"yes", "y", "confirm", "ok", "okay", "sure"}
	negateTokens = []string{"no", "n", "cancel", "nevermind"}

	greetingWords = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
)

const (
	cancelledResponse = "Action cancelled. How else can I help you?"
	greetingResponse  = "Hello! I can help you schedule meetings or send emails. What would you like to do?"
	offerResponse     = "I'm here to help you schedule meetings and send emails. What can I do for you?"
)

type Service struct {
	backend   nlu.Backend
	storeSvc  *store.Service
	actionSvc *action.Service
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		backend:   do.MustInvoke[nlu.Backend](di),
		storeSvc:  do.MustInvoke[*store.Service](di),
		actionSvc: do.MustInvoke[*action.Service](di),
		now:       time.Now,
		sessions:  map[string]*Session{},
	}, nil
}

// StartSession creates a fresh idle session and returns its identifier.
func (s *Service) StartSession() string {
	sess := &Session{ID: uuid.NewString()}
	sess.state.reset()

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	slog.Info("New chat session started", "session_id", sess.ID)

	return sess.ID
}

// ResetSession discards the session's state and turn log association and
// returns the replacement session identifier. The old log file stays on disk
// as an audit trail but no longer backs a live session.
func (s *Service) ResetSession(sessionID string) (string, error) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return "", fmt.Errorf("unknown session: %s", sessionID)
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return s.StartSession(), nil
}

// Snapshot returns the current state view of a session.
func (s *Service) Snapshot(sessionID string) (Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.snapshot(), nil
}

// ProcessTurn runs one user turn through the transition function and returns
// the assistant's response plus the updated state snapshot.
//
// Order is fixed: confirmation handling, switch detection, intent
// classification, then chitchat or slot filling. An unrecognized reply while
// awaiting confirmation deliberately falls through to reclassification
// instead of re-prompting for yes/no.
func (s *Service) ProcessTurn(ctx context.Context, sessionID, text string) (string, Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return "", Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	response := s.processLocked(ctx, sess, text)

	return response, sess.snapshot(), nil
}

func (s *Service) processLocked(ctx context.Context, sess *Session, text string) string {
	st := &sess.state
	token := strings.ToLower(strings.TrimSpace(text))

	// 1. Confirmation gate. Unrecognized replies fall through below.
	if st.Mode == ModeAwaitingConfirmation {
		if pie.Contains(affirmTokens, token) {
			result := s.actionSvc.Execute(sess.ID, st.Intent, st.Fields)
			s.logTurn(sess, text, result, st.Intent, st.Fields, false)
			st.reset()

			return result
		}

		if pie.Contains(negateTokens, token) {
			s.logTurn(sess, text, cancelledResponse, intent.None, nil, false)
			st.reset()

			return cancelledResponse
		}
	}

	// 2. Topic-switch check; a hit discards in-progress work and the same
	// input continues to classification.
	if intent.IsTask(st.Intent) && (st.Mode == ModeGathering || st.Mode == ModeAwaitingConfirmation) {
		if s.isSwitch(ctx, text, st.Intent) {
			slog.Info("Task switch detected, discarding in-progress fields",
				"session_id", sess.ID,
				"previous_intent", st.Intent)
			st.reset()
		}
	}

	// 3. Classification.
	history := s.recentHistory(sess.ID)

	classified, err := s.backend.ClassifyIntent(ctx, text, history)
	if err != nil {
		slog.Warn("Intent classification failed, treating turn as chitchat", "error", err)
		classified = intent.Chitchat
	}
	st.Intent = classified

	// 4. Chitchat never enters gathering or confirmation.
	if !intent.IsTask(classified) {
		response := chitchatResponse(text)
		s.logTurn(sess, text, response, classified, nil, false)

		return response
	}

	// 5. Slot filling.
	prior := priorFields(history, classified)

	extracted, err := s.backend.ExtractFields(ctx, text, classified, history, prior)
	if err != nil {
		slog.Warn("Field extraction failed, continuing with known fields", "error", err)
	}

	merged := mergeFields(classified, prior, extracted)

	if date, ok := merged["date"]; ok {
		merged["date"] = dates.Normalize(date, s.now())
	}

	st.Fields = merged
	st.MissingFields = intent.Missing(classified, merged)

	if len(st.MissingFields) > 0 {
		st.Mode = ModeGathering

		question, _ := intent.NextQuestion(classified, st.MissingFields)
		s.logTurn(sess, text, question, classified, merged, false)

		return question
	}

	st.Mode = ModeAwaitingConfirmation

	confirmation := intent.Confirmation(classified, merged)
	s.logTurn(sess, text, confirmation, classified, merged, true)

	return confirmation
}

func (s *Service) lookup(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}

	return sess, nil
}

func (s *Service) recentHistory(sessionID string) []store.TurnRecord {
	history, err := s.storeSvc.RecentTurns(sessionID, historyWindow)
	if err != nil {
		slog.Warn("Failed to read turn history", "session_id", sessionID, "error", err)
		return nil
	}

	return history
}

// logTurn appends the exchange to the session's turn log. The log is the
// only carrier of cross-turn context, so every branch writes it; a failed
// write degrades context but never the turn itself.
func (s *Service) logTurn(sess *Session, userText, response string, in intent.Intent, fields map[string]string, awaiting bool) {
	err := s.storeSvc.AppendTurn(store.TurnRecord{
		SessionID:            sess.ID,
		UserMessage:          userText,
		AssistantResponse:    response,
		Intent:               in,
		Fields:               fields,
		AwaitingConfirmation: awaiting,
		Timestamp:            s.now(),
	})
	if err != nil {
		slog.Error("Failed to append turn record", "session_id", sess.ID, "error", err)
	}
}

// priorFields collects, oldest first, every non-blank field recorded for the
// same intent in recent history. Later turns overwrite earlier ones per key.
func priorFields(history []store.TurnRecord, in intent.Intent) map[string]string {
	prior := map[string]string{}

	for _, turn := range history {
		if turn.Intent != in {
			continue
		}

		for key, value := range turn.Fields {
			if strings.TrimSpace(value) != "" && intent.Known(in, key) {
				prior[key] = value
			}
		}
	}

	return prior
}

// mergeFields overlays newly extracted values on top of prior ones. Keys the
// extractor did not mention keep their historical value; blank values and
// keys outside the intent's schema are never stored.
func mergeFields(in intent.Intent, prior, extracted map[string]string) map[string]string {
	merged := make(map[string]string, len(prior)+len(extracted))

	for key, value := range prior {
		merged[key] = value
	}

	for key, value := range extracted {
		if strings.TrimSpace(value) != "" && intent.Known(in, key) {
			merged[key] = value
		}
	}

	return merged
}

func chitchatResponse(text string) string {
	if containsAny(strings.ToLower(text), greetingWords) {
		return greetingResponse
	}

	return offerResponse
}
