package window

import (
	"errors"
	"fmt"
	"sort"
)

// Statistic selects how the window summarizes its contents into a baseline.
type Statistic string

const (
	StatMean   Statistic = "mean"
	StatMedian Statistic = "median"
	StatLast   Statistic = "last"
)

// ParseStatistic validates a reference statistic name from configuration.
// An empty name falls back to the mean.
func ParseStatistic(s string) (Statistic, error) {
	switch Statistic(s) {
	case StatMean, StatMedian, StatLast:
		return Statistic(s), nil
	case "":
		return StatMean, nil
	default:
		return "", fmt.Errorf("unknown reference statistic %q", s)
	}
}

// ErrInsufficientHistory is returned when a reference is requested from an empty window.
var ErrInsufficientHistory = errors.New("window is empty")

// Window is a fixed-capacity FIFO buffer of recent prices with a running sum.
// The filter only ever pushes accepted prices, so the buffer never contains
// a value that was classified as an outlier.
type Window struct {
	values []float64
	head   int // index of the oldest value
	count  int
	sum    float64
}

// New creates an empty window holding at most size prices.
func New(size int) (*Window, error) {
	if size < 1 {
		return nil, fmt.Errorf("window size must be at least 1, got %d", size)
	}
	return &Window{values: make([]float64, size)}, nil
}

// Push appends a price, evicting the oldest value once the window is full.
func (w *Window) Push(price float64) {
	if w.count == len(w.values) {
		w.sum -= w.values[w.head]
		w.values[w.head] = price
		w.head = (w.head + 1) % len(w.values)
	} else {
		w.values[(w.head+w.count)%len(w.values)] = price
		w.count++
	}
	w.sum += price
}

// Len returns the number of prices currently held.
func (w *Window) Len() int { return w.count }

// Cap returns the maximum number of prices the window holds.
func (w *Window) Cap() int { return len(w.values) }

// Reference summarizes the current contents with the given statistic.
func (w *Window) Reference(stat Statistic) (float64, error) {
	if w.count == 0 {
		return 0, ErrInsufficientHistory
	}
	switch stat {
	case StatMean, "":
		return w.sum / float64(w.count), nil
	case StatMedian:
		return w.median(), nil
	case StatLast:
		return w.last(), nil
	default:
		return 0, fmt.Errorf("unknown reference statistic %q", stat)
	}
}

func (w *Window) median() float64 {
	vals := make([]float64, w.count)
	for i := 0; i < w.count; i++ {
		vals[i] = w.values[(w.head+i)%len(w.values)]
	}
	sort.Float64s(vals)
	mid := w.count / 2
	if w.count%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2
	}
	return vals[mid]
}

func (w *Window) last() float64 {
	return w.values[(w.head+w.count-1)%len(w.values)]
}
