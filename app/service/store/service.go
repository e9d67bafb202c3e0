// Package store persists conversation turn logs, the global action log and
// outbox artifacts as JSON-lines files under the data directory. Appends are
// serialized per file; readers always see whole records.
package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"concierge/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const actionsFile = "actions.jsonl"

type Service struct {
	dataDir string

	convMu   sync.Mutex
	actionMu sync.Mutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{dataDir: cfg.Storage.DataDir}

	for _, dir := range []string{s.dataDir, s.conversationsDir(), s.outboxDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, oops.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	return s, nil
}

func (s *Service) conversationsDir() string {
	return filepath.Join(s.dataDir, "conversations")
}

func (s *Service) outboxDir() string {
	return filepath.Join(s.dataDir, "outbox")
}

func (s *Service) conversationFile(sessionID string) string {
	short := sessionID
	if len(short) > 8 {
		short = short[:8]
	}

	return filepath.Join(s.conversationsDir(), "conversation_"+short+".jsonl")
}

// AppendTurn appends one turn record to the session's conversation log.
func (s *Service) AppendTurn(rec TurnRecord) error {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	return appendLine(s.conversationFile(rec.SessionID), rec)
}

// RecentTurns returns up to limit most recent turn records for the session,
// oldest first. A session with no log yet yields an empty slice.
func (s *Service) RecentTurns(sessionID string, limit int) ([]TurnRecord, error) {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	records, err := readLines[TurnRecord](s.conversationFile(sessionID))
	if err != nil {
		return nil, err
	}

	return tail(records, limit), nil
}

// AppendAction appends one record to the global action log. Multiple sessions
// share this log, so writes go through a single mutex.
func (s *Service) AppendAction(rec ActionRecord) error {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	return appendLine(filepath.Join(s.dataDir, actionsFile), rec)
}

// RecentActions returns up to limit most recent action records, oldest first.
func (s *Service) RecentActions(limit int) ([]ActionRecord, error) {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	records, err := readLines[ActionRecord](filepath.Join(s.dataDir, actionsFile))
	if err != nil {
		return nil, err
	}

	return tail(records, limit), nil
}

// WriteOutbox writes a standalone pretty-printed JSON artifact to the outbox
// directory, e.g. meeting_20240304_150405.json.
func (s *Service) WriteOutbox(name string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	path := filepath.Join(s.outboxDir(), name+".json")
	if err = os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write outbox file: %w", err)
	}

	slog.Debug("Wrote outbox artifact", "path", path)

	return nil
}

func appendLine(path string, record any) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	writer := bufio.NewWriter(file)
	if _, err = writer.WriteString(string(data) + "\n"); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	if err = writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}

	return nil
}

func readLines[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var result []T

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record T
		if err = json.Unmarshal([]byte(line), &record); err != nil {
			return nil, fmt.Errorf("failed to parse JSON line: %w", err)
		}

		result = append(result, record)
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	return result, nil
}

func tail[T any](records []T, limit int) []T {
	if limit > 0 && len(records) > limit {
		return records[len(records)-limit:]
	}

	return records
}
