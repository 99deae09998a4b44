package port

import (
	"context"

	"github.com/ybakri/medstock/internal/core/domain"
)

// ReportStore keeps the bookkeeping rows for generated CSV reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report domain.Report) (int64, error)
	ListReports(ctx context.Context) ([]domain.Report, error)
	DeleteReport(ctx context.Context, id int64) error
}
