package filter

import (
	"errors"
	"fmt"
	"math"
	"time"

	"PriceSweep/internal/model"
	"PriceSweep/internal/window"
)

// State identifies the filter's classification phase.
type State string

const (
	// StateWarmingUp accepts every record unconditionally until the window
	// holds enough history to compare against.
	StateWarmingUp State = "WARMING_UP"
	// StateSteady classifies each record against the window baseline.
	StateSteady State = "STEADY"
)

var (
	// ErrMalformedRecord marks input the filter refuses to classify: a
	// non-finite price or a date that does not advance.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrDegenerateBaseline marks a non-positive or non-finite window
	// reference, where the relative deviation would be meaningless.
	ErrDegenerateBaseline = errors.New("degenerate baseline")
)

// Options configures a Filter.
type Options struct {
	WindowSize int
	Threshold  float64          // maximum fractional deviation before a price is an outlier
	Reference  window.Statistic // baseline statistic, mean when empty
}

// Decision is the classification of a single record.
type Decision struct {
	Accepted  bool
	Warmup    bool    // accepted unconditionally while history was short
	Reference float64 // baseline used, zero during warm-up
	Deviation float64 // |price - reference| / reference, zero during warm-up
}

// Filter classifies prices one at a time against a rolling window of
// previously accepted prices. A candidate never contributes to its own
// baseline and a rejected price never enters the window, so every decision
// depends only on clean history and never on later records.
type Filter struct {
	win       *window.Window
	threshold float64
	stat      window.Statistic
	state     State
	accepted  int
	position  int // count of records classified so far
	lastDate  time.Time
}

// New creates a Filter. The threshold is a fraction in [0, 1]: 0.05 means a
// price further than 5% from the window baseline is an outlier. Zero is
// allowed here so callers can demand an exact match; user-facing
// configuration is stricter.
func New(opts Options) (*Filter, error) {
	if math.IsNaN(opts.Threshold) || opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("threshold must be within [0, 1], got %v", opts.Threshold)
	}
	win, err := window.New(opts.WindowSize)
	if err != nil {
		return nil, err
	}
	stat := opts.Reference
	if stat == "" {
		stat = window.StatMean
	}
	if _, err := window.ParseStatistic(string(stat)); err != nil {
		return nil, err
	}
	return &Filter{
		win:       win,
		threshold: opts.Threshold,
		stat:      stat,
		state:     StateWarmingUp,
	}, nil
}

// State reports the current classification phase.
func (f *Filter) State() State { return f.state }

// Apply classifies the next record in the stream. Records must arrive in
// strictly ascending date order; the filter never reorders input and never
// revisits a decision.
func (f *Filter) Apply(rec model.PriceRecord) (Decision, error) {
	pos := f.position
	if math.IsNaN(rec.Price) || math.IsInf(rec.Price, 0) {
		return Decision{}, fmt.Errorf("record %d (%s): non-finite price: %w",
			pos, rec.Date.Format("2006-01-02"), ErrMalformedRecord)
	}
	if f.position > 0 && !rec.Date.After(f.lastDate) {
		return Decision{}, fmt.Errorf("record %d (%s): date does not advance past %s: %w",
			pos, rec.Date.Format("2006-01-02"), f.lastDate.Format("2006-01-02"), ErrMalformedRecord)
	}
	f.position++
	f.lastDate = rec.Date

	if f.state == StateWarmingUp {
		f.admit(rec.Price)
		return Decision{Accepted: true, Warmup: true}, nil
	}

	// Baseline from the window as it stood before this record arrived.
	ref, err := f.win.Reference(f.stat)
	if err != nil {
		return Decision{}, fmt.Errorf("record %d: %w", pos, err)
	}
	if ref <= 0 || math.IsNaN(ref) || math.IsInf(ref, 0) {
		return Decision{}, fmt.Errorf("record %d: reference %v: %w", pos, ref, ErrDegenerateBaseline)
	}

	dev := math.Abs(rec.Price-ref) / ref
	if dev > f.threshold {
		// Rejected prices stay out of the window so they cannot poison
		// the baseline for subsequent records.
		return Decision{Accepted: false, Reference: ref, Deviation: dev}, nil
	}
	f.admit(rec.Price)
	return Decision{Accepted: true, Reference: ref, Deviation: dev}, nil
}

func (f *Filter) admit(price float64) {
	f.win.Push(price)
	f.accepted++
	if f.state == StateWarmingUp && f.accepted >= f.win.Cap() {
		f.state = StateSteady
	}
}

// Run classifies an entire series, returning the cleaned records and the
// rejections in input order. A malformed record or a degenerate baseline
// stops the run; partial results are discarded.
func (f *Filter) Run(records []model.PriceRecord) ([]model.PriceRecord, []model.Rejection, error) {
	cleaned := make([]model.PriceRecord, 0, len(records))
	var rejected []model.Rejection
	for i, rec := range records {
		d, err := f.Apply(rec)
		if err != nil {
			return nil, nil, err
		}
		if d.Accepted {
			cleaned = append(cleaned, rec)
			continue
		}
		rejected = append(rejected, model.Rejection{
			Record:    rec,
			Reference: d.Reference,
			Deviation: d.Deviation,
			Position:  i,
		})
	}
	return cleaned, rejected, nil
}
