package scheduler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplewood/library/internal/tasks"
)

func setupTaskClient(t *testing.T) *tasks.Client {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "library.db")
	cfg := tasks.DefaultConfig()
	cfg.Workers = 1
	client, err := tasks.NewClient(dbPath, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func TestFineAccrualScheduler_StartStop(t *testing.T) {
	client := setupTaskClient(t)
	s := NewFineAccrualScheduler(client, "0 1 * * *", 0.50)

	require.NoError(t, s.Start())
	assert.True(t, s.isRunning)

	s.Stop()
	assert.False(t, s.isRunning)
}

func TestFineAccrualScheduler_StartTwiceIsNoop(t *testing.T) {
	client := setupTaskClient(t)
	s := NewFineAccrualScheduler(client, "* * * * *", 0.50)

	require.NoError(t, s.Start())
	firstEntry := s.entryID
	require.NoError(t, s.Start())
	assert.Equal(t, firstEntry, s.entryID)

	s.Stop()
}

func TestFineAccrualScheduler_InvalidSchedule(t *testing.T) {
	client := setupTaskClient(t)
	s := NewFineAccrualScheduler(client, "not a schedule", 0.50)

	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
	assert.False(t, s.isRunning)
}

func TestFineAccrualScheduler_StopWithoutStart(t *testing.T) {
	client := setupTaskClient(t)
	s := NewFineAccrualScheduler(client, "0 1 * * *", 0.50)

	// Must not panic or block.
	s.Stop()
	assert.False(t, s.isRunning)
}
