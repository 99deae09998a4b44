package domain

import "time"

// Report is a bookkeeping record of a generated CSV export.
type Report struct {
	ID          int64
	ReportType  string
	ReportDate  time.Time
	GeneratedBy string
	FilePath    string
	CreatedAt   time.Time
}
