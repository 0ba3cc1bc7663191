package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"PriceSweep/internal/cleaner"
	"PriceSweep/internal/model"
	"PriceSweep/internal/series"
	"PriceSweep/internal/state"
)

func dailyRecords(prices ...float64) []model.PriceRecord {
	base := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	records := make([]model.PriceRecord, len(prices))
	for i, p := range prices {
		records[i] = model.PriceRecord{Date: base.AddDate(0, 0, i), Price: p}
	}
	return records
}

func newTestScheduler(t *testing.T, loader series.Loader) *Scheduler {
	t.Helper()
	dir := t.TempDir()
	cl := cleaner.New(cleaner.Options{
		Loader:     loader,
		OutputPath: filepath.Join(dir, "out.csv"),
		WindowSize: 3,
		Threshold:  0.05,
	}, nil)
	sm, err := state.NewManager(filepath.Join(dir, "run_state.json"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return NewScheduler(context.Background(), cl, sm, nil, 0.5)
}

func TestRegister_ValidatesCronSpec(t *testing.T) {
	s := newTestScheduler(t, &series.MockLoader{})
	if err := s.Register("not a cron spec"); err == nil {
		t.Error("expected an error for a malformed cron spec")
	}
	if err := s.Register("0 0 7 * * 1-5"); err != nil {
		t.Errorf("expected the six-field spec to register, got %v", err)
	}
}

func TestRunNow_UpdatesJournal(t *testing.T) {
	s := newTestScheduler(t, &series.MockLoader{Records: dailyRecords(100, 101, 99, 102)})

	s.RunNow()

	st := s.State.Snapshot()
	if st.TotalRuns != 1 {
		t.Errorf("expected 1 run in the journal, got %d", st.TotalRuns)
	}
	if st.TotalRecords != 4 {
		t.Errorf("expected 4 records counted, got %d", st.TotalRecords)
	}
	if st.LastError != "" {
		t.Errorf("expected a clean run, got error %q", st.LastError)
	}
}

func TestRunNow_RecordsFailure(t *testing.T) {
	s := newTestScheduler(t, &series.MockLoader{Err: errors.New("feed offline")})

	s.RunNow()

	st := s.State.Snapshot()
	if st.TotalRuns != 1 {
		t.Errorf("expected the failed run counted, got %d", st.TotalRuns)
	}
	if st.LastError == "" {
		t.Error("expected the journal to carry the failure")
	}
	if st.ConsecutiveAlerts != 1 {
		t.Errorf("expected the failure to start an alert streak, got %d", st.ConsecutiveAlerts)
	}
}
