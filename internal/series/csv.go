package series

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"PriceSweep/internal/model"
)

// DefaultDateFormat is day-first with a four digit year, e.g. 25/12/2021.
const DefaultDateFormat = "02/01/2006"

// CSVLoader reads a price series from a CSV file with Date and Price
// columns. Extra columns are ignored; column order does not matter.
type CSVLoader struct {
	Path       string
	DateFormat string
}

func NewCSVLoader(path, dateFormat string) *CSVLoader {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	return &CSVLoader{Path: path, DateFormat: dateFormat}
}

func (l *CSVLoader) Name() string { return "csv:" + filepath.Base(l.Path) }

func (l *CSVLoader) Load() ([]model.PriceRecord, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", l.Path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s is empty", l.Path)
	}

	dateCol, priceCol, err := headerColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}

	records := make([]model.PriceRecord, 0, len(rows)-1)
	var prev time.Time
	for i, row := range rows[1:] {
		line := i + 2 // 1-based, after the header
		date, err := time.Parse(l.DateFormat, row[dateCol])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: parse date %q: %w", l.Path, line, row[dateCol], err)
		}
		price, err := strconv.ParseFloat(row[priceCol], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: parse price %q: %w", l.Path, line, row[priceCol], err)
		}
		if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
			return nil, fmt.Errorf("%s line %d: price must be a positive number, got %v", l.Path, line, price)
		}
		if i > 0 && !date.After(prev) {
			return nil, fmt.Errorf("%s line %d: date %s does not advance past %s",
				l.Path, line, date.Format(l.DateFormat), prev.Format(l.DateFormat))
		}
		prev = date
		records = append(records, model.PriceRecord{Date: date, Price: price})
	}
	return records, nil
}

func headerColumns(header []string) (dateCol, priceCol int, err error) {
	dateCol, priceCol = -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			dateCol = i
		case "price":
			priceCol = i
		}
	}
	var missing []string
	if dateCol < 0 {
		missing = append(missing, "Date")
	}
	if priceCol < 0 {
		missing = append(missing, "Price")
	}
	if len(missing) > 0 {
		return 0, 0, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return dateCol, priceCol, nil
}

// WriteCSV writes records as a Date,Price file in the given date format.
func WriteCSV(path, dateFormat string, records []model.PriceRecord) error {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Price"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Date.Format(dateFormat), strconv.FormatFloat(rec.Price, 'f', -1, 64)}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", row[0], err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// CleanedPath derives the output filename from the input by prefixing the
// base name, so data/Outliers.csv becomes data/Cleaned_Outliers.csv.
func CleanedPath(inputPath string) string {
	dir, base := filepath.Split(inputPath)
	return filepath.Join(dir, "Cleaned_"+base)
}
