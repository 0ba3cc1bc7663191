package recorder

import "PriceSweep/internal/model"

// Recorder persists cleaning run history for later inspection.
type Recorder interface {
	RecordRun(summary *model.Summary, rejections []model.Rejection) error
	Close() error
}
