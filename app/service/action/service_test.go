package action

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"concierge/app/config"
	"concierge/app/service/intent"
	"concierge/app/service/store"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.Service, string) {
	t.Helper()

	dataDir := t.TempDir()

	di := do.New()
	t.Cleanup(func() { _ = di.Shutdown() })

	do.ProvideValue(di, &config.Config{
		Storage: config.Storage{DataDir: dataDir},
	})
	do.Provide(di, store.New)

	svc, err := New(di)
	require.NoError(t, err)
	svc.now = func() time.Time {
		return time.Date(2024, 3, 4, 15, 4, 5, 0, time.UTC)
	}

	return svc, do.MustInvoke[*store.Service](di), dataDir
}

func TestExecuteMeeting(t *testing.T) {
	svc, storeSvc, dataDir := newTestService(t)

	msg := svc.Execute("session-1", intent.ScheduleMeeting, map[string]string{
		"title":        "Budget review",
		"date":         "2024-03-05",
		"time":         "3pm",
		"participants": "sam@example.com",
	})
	assert.Equal(t, "Meeting 'Budget review' has been booked for 2024-03-05 at 3pm. Details saved to files.", msg)

	actions, err := storeSvc.RecentActions(10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "meeting", actions[0].ActionType)
	assert.Equal(t, "Budget review", actions[0].ActionData["title"])
	assert.True(t, actions[0].Executed)

	_, err = os.Stat(filepath.Join(dataDir, "outbox", "meeting_20240304_150405.json"))
	assert.NoError(t, err)
}

func TestExecuteEmailDefaultsSubject(t *testing.T) {
	svc, storeSvc, _ := newTestService(t)

	msg := svc.Execute("session-1", intent.SendEmail, map[string]string{
		"recipient": "john@example.com",
		"body":      "hello",
	})
	assert.Equal(t, "Email sent to john@example.com. Details saved to files.", msg)

	actions, err := storeSvc.RecentActions(10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "No subject", actions[0].ActionData["subject"])
}

func TestExecuteSurvivesStorageFailure(t *testing.T) {
	svc, _, dataDir := newTestService(t)

	// make the data dir unusable so appends fail
	require.NoError(t, os.RemoveAll(dataDir))
	require.NoError(t, os.WriteFile(dataDir, []byte("not a dir"), 0644))

	msg := svc.Execute("session-1", intent.SendEmail, map[string]string{
		"recipient": "john@example.com",
		"body":      "hello",
	})
	assert.Equal(t, "Email sent to john@example.com. Details saved to files.", msg)
}

func TestExecuteUnknownIntent(t *testing.T) {
	svc, _, _ := newTestService(t)

	msg := svc.Execute("session-1", intent.Chitchat, nil)
	assert.Equal(t, "Action completed.", msg)
}
