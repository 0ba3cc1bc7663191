package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"PriceSweep/internal/model"
)

func summaryWith(total, accepted, rejected int) *model.Summary {
	return &model.Summary{
		Total:     total,
		Accepted:  accepted,
		Rejected:  rejected,
		StartedAt: time.Date(2021, 2, 8, 7, 0, 0, 0, time.UTC),
	}
}

func TestManager_PersistsAcrossReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_state.json")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if alerted := m.RecordSuccess(summaryWith(10, 9, 1), 0.2); alerted {
		t.Error("10% rejects against a 20% threshold should not alert")
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	st := reloaded.Snapshot()
	if st.TotalRuns != 1 || st.TotalRecords != 10 || st.TotalRejections != 1 {
		t.Errorf("journal lost across reload: %+v", st)
	}
	if st.LastError != "" {
		t.Errorf("expected no last error, got %q", st.LastError)
	}
}

func TestManager_AlertStreakAndReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run_state.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	noisy := summaryWith(10, 5, 5)
	quiet := summaryWith(10, 10, 0)

	if !m.RecordSuccess(noisy, 0.1) {
		t.Error("50% rejects against a 10% threshold should alert")
	}
	if !m.RecordSuccess(noisy, 0.1) {
		t.Error("second noisy run should alert again")
	}
	if st := m.Snapshot(); st.ConsecutiveAlerts != 2 {
		t.Errorf("expected alert streak 2, got %d", st.ConsecutiveAlerts)
	}

	if m.RecordSuccess(quiet, 0.1) {
		t.Error("clean run should not alert")
	}
	if st := m.Snapshot(); st.ConsecutiveAlerts != 0 {
		t.Errorf("expected streak reset after a quiet run, got %d", st.ConsecutiveAlerts)
	}
}

func TestManager_RatioAtThresholdDoesNotAlert(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "run_state.json"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	// Exactly at the threshold is still acceptable.
	if m.RecordSuccess(summaryWith(10, 9, 1), 0.1) {
		t.Error("a ratio equal to the alert threshold should not alert")
	}
}

func TestManager_RecordFailure(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "run_state.json"))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	m.RecordFailure(errors.New("feed offline"))

	st := m.Snapshot()
	if st.TotalRuns != 1 {
		t.Errorf("expected failed run counted, got %d runs", st.TotalRuns)
	}
	if st.LastError != "feed offline" {
		t.Errorf("expected last error recorded, got %q", st.LastError)
	}
	if st.ConsecutiveAlerts != 1 {
		t.Errorf("expected a failure to extend the alert streak, got %d", st.ConsecutiveAlerts)
	}
}
