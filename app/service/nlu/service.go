// Package nlu turns raw user text into intents and field values. It exposes
// a pluggable Backend contract with two implementations: an LLM-backed one
// and a deterministic rule-based one. Service wraps both and degrades to the
// rules whenever the LLM is unconfigured, times out or misbehaves, so a bad
// backend call never fails a turn.
package nlu

import (
	"context"
	"fmt"
	"log/slog"

	"concierge/app/config"
	"concierge/app/service/intent"
	"concierge/app/service/store"

	"github.com/samber/do"
)

// Backend is the entity-extractor contract. Implementations may be imperfect
// or unavailable; callers decide how to recover.
type Backend interface {
	// ClassifyIntent labels text as one of the task intents or chitchat,
	// using recent turns for context.
	ClassifyIntent(ctx context.Context, text string, history []store.TurnRecord) (intent.Intent, error)

	// ExtractFields returns only the field values newly stated in text,
	// scoped to the given intent. Known holds previously gathered values so
	// the backend does not re-extract them.
	ExtractFields(ctx context.Context, text string, in intent.Intent, history []store.TurnRecord, known map[string]string) (map[string]string, error)

	// ClassifySwitch reports whether text abandons the current task for a
	// different one. Used as a secondary signal after the keyword fast path.
	ClassifySwitch(ctx context.Context, text string, current intent.Intent) (bool, error)
}

type Service struct {
	primary Backend
	rules   *RuleBackend
}

var _ Backend = (*Service)(nil)

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{rules: NewRuleBackend()}

	if cfg.OpenAI.Token == "" {
		slog.Warn("No LLM token configured, running with the rule-based extractor only")
		return s, nil
	}

	llm, err := NewLLMBackend(cfg.OpenAI)
	if err != nil {
		return nil, fmt.Errorf("failed to init LLM backend: %w", err)
	}
	s.primary = llm

	return s, nil
}

// Probe issues a one-shot test call against the LLM backend and logs the
// outcome. Never fatal: a failed probe just means the rules will carry turns
// until the backend recovers.
func (s *Service) Probe(ctx context.Context) {
	llm, ok := s.primary.(*LLMBackend)
	if !ok {
		return
	}

	if err := llm.Probe(ctx); err != nil {
		slog.Warn("LLM backend probe failed", "error", err)
		return
	}

	slog.Info("LLM backend connection successful")
}

func (s *Service) ClassifyIntent(ctx context.Context, text string, history []store.TurnRecord) (intent.Intent, error) {
	if s.primary != nil {
		result, err := s.primary.ClassifyIntent(ctx, text, history)
		if err == nil {
			return result, nil
		}

		slog.Warn("LLM intent classification failed, falling back to rules", "error", err)
	}

	return s.rules.ClassifyIntent(ctx, text, history)
}

func (s *Service) ExtractFields(ctx context.Context, text string, in intent.Intent, history []store.TurnRecord, known map[string]string) (map[string]string, error) {
	if s.primary != nil {
		result, err := s.primary.ExtractFields(ctx, text, in, history, known)
		if err == nil {
			return result, nil
		}

		slog.Warn("LLM field extraction failed, falling back to rules", "error", err)
	}

	return s.rules.ExtractFields(ctx, text, in, history, known)
}

func (s *Service) ClassifySwitch(ctx context.Context, text string, current intent.Intent) (bool, error) {
	if s.primary != nil {
		result, err := s.primary.ClassifySwitch(ctx, text, current)
		if err == nil {
			return result, nil
		}

		slog.Warn("LLM switch classification failed, defaulting to no switch", "error", err)
	}

	return s.rules.ClassifySwitch(ctx, text, current)
}
