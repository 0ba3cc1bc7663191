package series

import (
	"time"

	"PriceSweep/internal/model"
)

// Loader produces a dated price series in ascending date order.
type Loader interface {
	Load() ([]model.PriceRecord, error)
	// Name identifies the source in logs and reports.
	Name() string
}

// MockLoader returns a synthetic series for testing without touching disk
// or network.
type MockLoader struct {
	Price   float64 // base price for generated records, 100 when zero
	Records []model.PriceRecord
	Err     error
}

func (m *MockLoader) Load() ([]model.PriceRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Records != nil {
		return m.Records, nil
	}
	base := m.Price
	if base == 0 {
		base = 100
	}
	return GenerateRecords(base, 30), nil
}

func (m *MockLoader) Name() string { return "mock" }

// GenerateRecords builds count days of gently drifting prices ending today.
func GenerateRecords(basePrice float64, count int) []model.PriceRecord {
	records := make([]model.PriceRecord, 0, count)
	now := time.Now()
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		records = append(records, model.PriceRecord{
			Date:  now.AddDate(0, 0, -(count - i)),
			Price: p,
		})
	}
	return records
}
