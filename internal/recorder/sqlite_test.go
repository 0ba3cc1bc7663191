package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"PriceSweep/internal/model"
)

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	r, err := NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRecorder failed: %v", err)
	}
	defer r.Close()

	summary := &model.Summary{
		Source:     "csv:Outliers.csv",
		Output:     "Cleaned_Outliers.csv",
		Total:      6,
		Accepted:   5,
		Rejected:   1,
		LowPrice:   99,
		HighPrice:  103,
		WindowSize: 3,
		Threshold:  0.05,
		Reference:  "mean",
		StartedAt:  time.Date(2021, 2, 8, 7, 0, 0, 0, time.UTC),
		Duration:   42 * time.Millisecond,
	}
	rejections := []model.Rejection{
		{
			Record:    model.PriceRecord{Date: time.Date(2021, 2, 5, 0, 0, 0, 0, time.UTC), Price: 500},
			Reference: 100.67,
			Deviation: 3.97,
			Position:  4,
		},
	}

	if err := r.RecordRun(summary, rejections); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	var runs int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 1 {
		t.Errorf("expected 1 run row, got %d", runs)
	}

	var deviation float64
	var position int
	err = r.db.QueryRow("SELECT deviation, position FROM rejections").Scan(&deviation, &position)
	if err != nil {
		t.Fatalf("query rejection: %v", err)
	}
	if deviation != 3.97 || position != 4 {
		t.Errorf("expected rejection (3.97, 4), got (%v, %d)", deviation, position)
	}
}

func TestSQLiteRecorder_MigrateIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	r, err := NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	r, err = NewSQLiteRecorder(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	r.Close()
}
