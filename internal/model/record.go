package model

import "time"

// PriceRecord is a single dated price observation.
type PriceRecord struct {
	Date  time.Time
	Price float64
}

// Rejection describes a record the filter dropped as an outlier.
type Rejection struct {
	Record    PriceRecord
	Reference float64 // window baseline the price was compared against
	Deviation float64 // |price - reference| / reference
	Position  int     // zero-based position in the input stream
}
