package model

import "time"

// RunState tracks cumulative cleaning activity across watch-mode runs.
type RunState struct {
	TotalRuns          int       `json:"total_runs"`
	TotalRecords       int       `json:"total_records"`
	TotalRejections    int       `json:"total_rejections"`
	ConsecutiveAlerts  int       `json:"consecutive_alerts"`
	LastRunAt          time.Time `json:"last_run_at"`
	LastRejectRatio    float64   `json:"last_reject_ratio"`
	LastError          string    `json:"last_error"`
	RecentRejectRatios []float64 `json:"recent_reject_ratios"`
	UpdatedAt          time.Time `json:"updated_at"`
}
