package state

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"PriceSweep/internal/model"
)

// LoadState reads the run journal from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*model.RunState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.RunState{}, nil
		}
		return nil, err
	}
	var st model.RunState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveState writes the run journal to a JSON file, creating parent
// directories as needed.
func SaveState(filePath string, st *model.RunState) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}

// Manager tracks cleaning run history across restarts with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *model.RunState
	filePath string
}

// NewManager creates a Manager, loading or initializing state from disk.
func NewManager(filePath string) (*Manager, error) {
	st, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}
	m := &Manager{state: st, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Snapshot returns a copy of the current run journal.
func (m *Manager) Snapshot() model.RunState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// RecordSuccess folds a finished run into the journal. It reports whether
// the run's reject ratio crossed the alert threshold; the consecutive-alert
// counter resets on the first quiet run.
func (m *Manager) RecordSuccess(summary *model.Summary, alertRatio float64) (alerted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.TotalRuns++
	m.state.TotalRecords += summary.Total
	m.state.TotalRejections += summary.Rejected
	m.state.LastRunAt = summary.StartedAt
	m.state.LastError = ""

	ratio := summary.RejectRatio()
	m.state.LastRejectRatio = ratio
	m.state.RecentRejectRatios = append(m.state.RecentRejectRatios, ratio)
	if len(m.state.RecentRejectRatios) > 12 {
		m.state.RecentRejectRatios = m.state.RecentRejectRatios[len(m.state.RecentRejectRatios)-12:]
	}

	if ratio > alertRatio {
		m.state.ConsecutiveAlerts++
		alerted = true
	} else {
		m.state.ConsecutiveAlerts = 0
	}

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save run state: %v", err)
	}
	return alerted
}

// RecordFailure notes a run that did not produce output.
func (m *Manager) RecordFailure(runErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.TotalRuns++
	m.state.LastRunAt = time.Now()
	m.state.LastError = runErr.Error()
	m.state.ConsecutiveAlerts++

	if err := m.save(); err != nil {
		log.Printf("[ERROR] failed to save run state: %v", err)
	}
}

func (m *Manager) save() error {
	return SaveState(m.filePath, m.state)
}
