package tasks

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "library.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	tasksDBPath := filepath.Join(tmpDir, "library-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "library.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// recordingAccruer captures AccrueFines calls.
type recordingAccruer struct {
	mu    sync.Mutex
	rates []float64
	done  chan struct{}
}

func (a *recordingAccruer) AccrueFines(rate float64, now time.Time) (int64, error) {
	a.mu.Lock()
	a.rates = append(a.rates, rate)
	a.mu.Unlock()
	select {
	case a.done <- struct{}{}:
	default:
	}
	return 1, nil
}

func TestAccrueFinesTaskExecution(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "library.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	accruer := &recordingAccruer{done: make(chan struct{}, 1)}
	client.Register(NewAccrueFinesQueue(accruer, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	_, err = client.Add(AccrueFinesTask{Rate: 0.50}).Save()
	require.NoError(t, err)

	select {
	case <-accruer.done:
	case <-time.After(5 * time.Second):
		t.Fatal("task was not processed in time")
	}

	accruer.mu.Lock()
	defer accruer.mu.Unlock()
	require.NotEmpty(t, accruer.rates)
	assert.Equal(t, 0.50, accruer.rates[0])
}

func TestNewAccrueFinesQueue_SettingsFromConfig(t *testing.T) {
	cfg := Config{
		MaxRetries:        7,
		RetryDelay:        2 * time.Minute,
		TaskTimeout:       30 * time.Second,
		RetentionDuration: 48 * time.Hour,
	}
	_ = NewAccrueFinesQueue(&recordingAccruer{done: make(chan struct{}, 1)}, cfg)

	qc := AccrueFinesTask{}.Config()
	assert.Equal(t, 7, qc.MaxAttempts)
	assert.Equal(t, 2*time.Minute, qc.Backoff)
	assert.Equal(t, 30*time.Second, qc.Timeout)
	require.NotNil(t, qc.Retention)
	assert.Equal(t, 48*time.Hour, qc.Retention.Duration)

	// Zero values keep the defaults.
	_ = NewAccrueFinesQueue(&recordingAccruer{done: make(chan struct{}, 1)}, Config{})
	qc = AccrueFinesTask{}.Config()
	assert.Equal(t, 3, qc.MaxAttempts)
	assert.Equal(t, time.Minute, qc.Backoff)
}
