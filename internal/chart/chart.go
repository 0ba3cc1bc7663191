package chart

import (
	"fmt"
	"os"

	"github.com/vicanso/go-charts/v2"

	"PriceSweep/internal/model"
)

// Render draws the cleaned series as a PNG line chart.
func Render(title string, records []model.PriceRecord) ([]byte, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("not enough data points to chart: %d", len(records))
	}

	labels := make([]string, len(records))
	values := make([]float64, len(records))
	yMin, yMax := records[0].Price, records[0].Price
	for i, rec := range records {
		labels[i] = rec.Date.Format("02/01/2006")
		values[i] = rec.Price
		if rec.Price < yMin {
			yMin = rec.Price
		}
		if rec.Price > yMax {
			yMax = rec.Price
		}
	}

	// Pad the y axis so the line does not hug the frame.
	pad := (yMax - yMin) * 0.05
	if pad < yMax*0.002 {
		pad = yMax * 0.002
	}
	yMin -= pad
	yMax += pad
	if yMin < 0 {
		yMin = 0
	}

	split := len(records) / 10
	if split < 4 {
		split = 4
	}
	if split > 12 {
		split = 12
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: split,
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return p.Bytes()
}

// Save renders the series and writes the PNG to path.
func Save(path, title string, records []model.PriceRecord) error {
	buf, err := Render(title, records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("write chart %s: %w", path, err)
	}
	return nil
}
