package cleaner

import (
	"fmt"
	"log"
	"math"
	"time"

	"PriceSweep/internal/chart"
	"PriceSweep/internal/filter"
	"PriceSweep/internal/model"
	"PriceSweep/internal/recorder"
	"PriceSweep/internal/series"
	"PriceSweep/internal/window"
)

// Options configures a cleaning pipeline.
type Options struct {
	Loader     series.Loader
	OutputPath string // derived from the input when empty
	DateFormat string
	ChartPath  string // no chart when empty
	WindowSize int
	Threshold  float64
	Reference  window.Statistic
}

// Cleaner runs the load, filter, write pipeline for one source.
type Cleaner struct {
	opts Options
	rec  recorder.Recorder
}

func New(opts Options, rec recorder.Recorder) *Cleaner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Cleaner{opts: opts, rec: rec}
}

// SourceName identifies the configured source in logs and alerts.
func (c *Cleaner) SourceName() string { return c.opts.Loader.Name() }

// Run loads the series, filters it and writes the cleaned output. Nothing
// is written when loading or filtering fails.
func (c *Cleaner) Run() (*model.Summary, []model.Rejection, error) {
	started := time.Now()

	records, err := c.opts.Loader.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load series: %w", err)
	}
	log.Printf("[INFO] loaded %d records from %s", len(records), c.opts.Loader.Name())

	f, err := filter.New(filter.Options{
		WindowSize: c.opts.WindowSize,
		Threshold:  c.opts.Threshold,
		Reference:  c.opts.Reference,
	})
	if err != nil {
		return nil, nil, err
	}

	cleaned, rejections, err := f.Run(records)
	if err != nil {
		return nil, nil, fmt.Errorf("filter series: %w", err)
	}
	log.Printf("[INFO] found %d outliers in %d records", len(rejections), len(records))
	for _, rej := range rejections {
		log.Printf("[WARN] outlier at %s: price %.4f vs reference %.4f (deviation %.2f%%)",
			rej.Record.Date.Format("2006-01-02"), rej.Record.Price, rej.Reference, rej.Deviation*100)
	}

	outPath := c.outputPath()
	if err := series.WriteCSV(outPath, c.opts.DateFormat, cleaned); err != nil {
		return nil, nil, fmt.Errorf("write cleaned series: %w", err)
	}
	log.Printf("[INFO] cleaned series written to %s", outPath)

	low, high := priceExtremes(cleaned)
	summary := &model.Summary{
		Source:     c.opts.Loader.Name(),
		Output:     outPath,
		Total:      len(records),
		Accepted:   len(cleaned),
		Rejected:   len(rejections),
		LowPrice:   low,
		HighPrice:  high,
		WindowSize: c.opts.WindowSize,
		Threshold:  c.opts.Threshold,
		Reference:  string(c.statistic()),
		StartedAt:  started,
		Duration:   time.Since(started),
	}

	if err := c.rec.RecordRun(summary, rejections); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	if c.opts.ChartPath != "" {
		if err := chart.Save(c.opts.ChartPath, summary.Source, cleaned); err != nil {
			log.Printf("[WARN] chart not written: %v", err)
		} else {
			log.Printf("[INFO] chart written to %s", c.opts.ChartPath)
		}
	}

	return summary, rejections, nil
}

func (c *Cleaner) outputPath() string {
	if c.opts.OutputPath != "" {
		return c.opts.OutputPath
	}
	if l, ok := c.opts.Loader.(*series.CSVLoader); ok {
		return series.CleanedPath(l.Path)
	}
	return "Cleaned_Outliers.csv"
}

func (c *Cleaner) statistic() window.Statistic {
	if c.opts.Reference == "" {
		return window.StatMean
	}
	return c.opts.Reference
}

// priceExtremes scans the cleaned series for its lowest and highest price.
func priceExtremes(records []model.PriceRecord) (low, high float64) {
	low, high = math.Inf(1), math.Inf(-1)
	for _, rec := range records {
		if rec.Price < low {
			low = rec.Price
		}
		if rec.Price > high {
			high = rec.Price
		}
	}
	if len(records) == 0 {
		return 0, 0
	}
	return low, high
}
