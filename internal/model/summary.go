package model

import "time"

// Summary holds the outcome of one cleaning run.
type Summary struct {
	Source     string
	Output     string
	Total      int
	Accepted   int
	Rejected   int
	LowPrice   float64
	HighPrice  float64
	WindowSize int
	Threshold  float64
	Reference  string
	StartedAt  time.Time
	Duration   time.Duration
}

// RejectRatio returns the fraction of input records dropped as outliers.
func (s *Summary) RejectRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(s.Total)
}
