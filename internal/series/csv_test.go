package series

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"PriceSweep/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Outliers.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestCSVLoader_LoadValidSeries(t *testing.T) {
	path := writeTempCSV(t, "Date,Price\n01/02/2021,100.5\n02/02/2021,101.25\n")

	records, err := NewCSVLoader(path, "").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	want := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	if !records[0].Date.Equal(want) {
		t.Errorf("expected first date %s, got %s", want, records[0].Date)
	}
	if records[0].Price != 100.5 {
		t.Errorf("expected first price 100.5, got %v", records[0].Price)
	}
}

func TestCSVLoader_ExtraColumnsTolerated(t *testing.T) {
	path := writeTempCSV(t, "Volume,Date,Price\n1200,01/02/2021,100\n900,02/02/2021,101\n")

	records, err := NewCSVLoader(path, "").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 2 || records[1].Price != 101 {
		t.Fatalf("expected 2 records with the Price column found by name, got %+v", records)
	}
}

func TestCSVLoader_MissingColumnsNamed(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		mention string
	}{
		{"no price column", "Date,Volume", "Price"},
		{"no date column", "Day,Price", "Date"},
		{"neither column", "Day,Volume", "Date, Price"},
	}
	for _, c := range cases {
		path := writeTempCSV(t, c.header+"\n01/02/2021,100\n")
		_, err := NewCSVLoader(path, "").Load()
		if err == nil {
			t.Errorf("%s: expected an error, got none", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.mention) {
			t.Errorf("%s: expected error to name %q, got %v", c.name, c.mention, err)
		}
	}
}

func TestCSVLoader_MalformedRowsAbort(t *testing.T) {
	cases := []struct {
		name string
		rows string
	}{
		{"unparseable date", "2021-02-01,100\n"},
		{"unparseable price", "01/02/2021,abc\n"},
		{"negative price", "01/02/2021,-5\n"},
		{"zero price", "01/02/2021,0\n"},
		{"backwards date", "02/02/2021,100\n01/02/2021,101\n"},
		{"duplicate date", "01/02/2021,100\n01/02/2021,101\n"},
	}
	for _, c := range cases {
		path := writeTempCSV(t, "Date,Price\n"+c.rows)
		if _, err := NewCSVLoader(path, "").Load(); err == nil {
			t.Errorf("%s: expected an error, got none", c.name)
		}
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	records := []model.PriceRecord{
		{Date: time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), Price: 100.5},
		{Date: time.Date(2021, 2, 2, 0, 0, 0, 0, time.UTC), Price: 101},
	}

	path := filepath.Join(t.TempDir(), "Cleaned_Outliers.csv")
	if err := WriteCSV(path, "", records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	loaded, err := NewCSVLoader(path, "").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != len(records) {
		t.Fatalf("expected %d records back, got %d", len(records), len(loaded))
	}
	for i := range records {
		if !loaded[i].Date.Equal(records[i].Date) || loaded[i].Price != records[i].Price {
			t.Errorf("record %d changed in the round trip: %+v vs %+v", i, loaded[i], records[i])
		}
	}
}

func TestCleanedPath(t *testing.T) {
	if got := CleanedPath("Outliers.csv"); got != "Cleaned_Outliers.csv" {
		t.Errorf("expected Cleaned_Outliers.csv, got %s", got)
	}
	want := filepath.Join("data", "Cleaned_prices.csv")
	if got := CleanedPath(filepath.Join("data", "prices.csv")); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
