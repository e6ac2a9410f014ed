// Package scheduler runs the periodic fine accrual job. Overdue itself is a
// derived read-time state; the scheduler only touches fine_amount.
package scheduler

import (
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/maplewood/library/internal/tasks"
)

// FineAccrualScheduler enqueues a fine accrual task on a cron schedule.
type FineAccrualScheduler struct {
	taskClient *tasks.Client
	schedule   string
	rate       float64

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewFineAccrualScheduler creates a scheduler. schedule is standard 5-field
// cron syntax; rate is the per-day fine in currency units.
func NewFineAccrualScheduler(taskClient *tasks.Client, schedule string, rate float64) *FineAccrualScheduler {
	return &FineAccrualScheduler{
		taskClient: taskClient,
		schedule:   schedule,
		rate:       rate,
		cron:       cron.New(),
	}
}

// Start begins the schedule. Calling Start on a running scheduler is a
// no-op.
func (s *FineAccrualScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.taskClient.Add(tasks.AccrueFinesTask{Rate: s.rate}).Save(); err != nil {
			log.Printf("Fine accrual scheduler: failed to enqueue task: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Fine accrual scheduler started (schedule: %s, rate: %.2f/day)", s.schedule, s.rate)
	return nil
}

// Stop halts the schedule; a job already handed to the task queue is not
// interrupted.
func (s *FineAccrualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Remove(s.entryID)
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Fine accrual scheduler stopped")
}
