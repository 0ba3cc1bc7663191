package scheduler

import (
	"context"
	"fmt"
	"log"

	"PriceSweep/internal/cleaner"
	"PriceSweep/internal/notifier"
	"PriceSweep/internal/state"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the cleaning pipeline on a cron schedule and raises
// alerts when the feed degrades.
type Scheduler struct {
	Cron       *cron.Cron
	Cleaner    *cleaner.Cleaner
	State      *state.Manager
	Notifier   *notifier.TelegramNotifier
	AlertRatio float64
	Ctx        context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cl *cleaner.Cleaner, sm *state.Manager, tn *notifier.TelegramNotifier, alertRatio float64) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Cleaner:    cl,
		State:      sm,
		Notifier:   tn,
		AlertRatio: alertRatio,
		Ctx:        ctx,
	}
}

// Register registers the cleaning task on the given cron spec.
func (s *Scheduler) Register(cronSpec string) error {
	if _, err := s.Cron.AddFunc(cronSpec, s.runTask); err != nil {
		return fmt.Errorf("register cleaning task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the cleaning task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.runTask()
}

func (s *Scheduler) runTask() {
	log.Println("[INFO] running scheduled cleaning")

	summary, _, err := s.Cleaner.Run()
	if err != nil {
		log.Printf("[ERROR] scheduled cleaning: %v", err)
		s.State.RecordFailure(err)
		st := s.State.Snapshot()
		s.trySend(notifier.FormatFailureAlert(s.Cleaner.SourceName(), err) + "\n" + notifier.FormatJournal(&st))
		return
	}

	alerted := s.State.RecordSuccess(summary, s.AlertRatio)
	if alerted {
		st := s.State.Snapshot()
		s.trySend(notifier.FormatDegradationAlert(summary, s.AlertRatio, st.ConsecutiveAlerts) +
			"\n" + notifier.FormatRunReport(summary))
		return
	}

	log.Printf("[INFO] scheduled cleaning done: %d records, %d rejected", summary.Total, summary.Rejected)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || !s.Notifier.Enabled() {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
