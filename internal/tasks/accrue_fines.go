package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// FineAccruer recomputes fines for overdue loans.
type FineAccruer interface {
	AccrueFines(rate float64, now time.Time) (int64, error)
}

// AccrueFinesTask recalculates fine_amount for every overdue loan as
// days-overdue times the per-day rate. The computation is monotonic, so the
// task is safe to retry and to run on a schedule.
type AccrueFinesTask struct {
	Rate float64 `json:"rate"`
}

// backlite reads queue settings through the task type, so the retry and
// retention knobs are package state fixed by NewAccrueFinesQueue before the
// queue is registered.
var accrueFinesQueueConfig = defaultAccrueFinesQueueConfig()

func defaultAccrueFinesQueueConfig() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "accrue_fines",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Config returns the queue configuration for fine accrual tasks.
func (t AccrueFinesTask) Config() backlite.QueueConfig {
	return accrueFinesQueueConfig
}

// AccrueFinesProcessor creates a processor function for AccrueFinesTask.
func AccrueFinesProcessor(accruer FineAccruer) backlite.QueueProcessor[AccrueFinesTask] {
	return func(ctx context.Context, task AccrueFinesTask) error {
		if accruer == nil {
			return fmt.Errorf("fine accruer not configured")
		}

		updated, err := accruer.AccrueFines(task.Rate, time.Now())
		if err != nil {
			return fmt.Errorf("accrue fines: %w", err)
		}

		log.Printf("[TASK] Accrued fines on %d overdue loan(s)", updated)
		return nil
	}
}

// NewAccrueFinesQueue creates a backlite queue for fine accrual tasks,
// taking its retry and retention settings from cfg. Zero values keep the
// defaults.
func NewAccrueFinesQueue(accruer FineAccruer, cfg Config) backlite.Queue {
	qc := defaultAccrueFinesQueueConfig()
	if cfg.MaxRetries > 0 {
		qc.MaxAttempts = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		qc.Backoff = cfg.RetryDelay
	}
	if cfg.TaskTimeout > 0 {
		qc.Timeout = cfg.TaskTimeout
	}
	if cfg.RetentionDuration > 0 {
		qc.Retention.Duration = cfg.RetentionDuration
	}
	accrueFinesQueueConfig = qc

	return backlite.NewQueue(AccrueFinesProcessor(accruer))
}
