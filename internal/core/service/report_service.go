package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ybakri/medstock/internal/core/domain"
	"github.com/ybakri/medstock/internal/port"
)

const (
	ReportInventory    = "inventory"
	ReportLowStock     = "low-stock"
	ReportExpiring     = "expiring"
	ReportExpired      = "expired"
	ReportTransactions = "transactions"
)

// ReportService renders CSV exports from the read side and records each
// generated file in the report history.
type ReportService struct {
	supplies port.SupplyRepository
	ledger   port.TransactionLedger
	views    *ViewsService
	reports  port.ReportStore
	dir      string
	log      *logrus.Logger
}

func NewReportService(supplies port.SupplyRepository, ledger port.TransactionLedger, views *ViewsService, reports port.ReportStore, dir string, log *logrus.Logger) *ReportService {
	return &ReportService{
		supplies: supplies,
		ledger:   ledger,
		views:    views,
		reports:  reports,
		dir:      dir,
		log:      log,
	}
}

// Generate writes the requested report type to a CSV file and saves its
// bookkeeping row. Transaction reports cover the last 30 days.
func (r *ReportService) Generate(ctx context.Context, reportType, generatedBy string) (*domain.Report, error) {
	header, rows, err := r.buildRows(ctx, reportType)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("report dir: %w", err)
	}

	path := filepath.Join(r.dir, fmt.Sprintf("%s-%s.csv", reportType, uuid.New().String()))
	if err := writeCSV(path, header, rows); err != nil {
		return nil, err
	}

	report := domain.Report{
		ReportType:  reportType,
		ReportDate:  time.Now(),
		GeneratedBy: generatedBy,
		FilePath:    path,
	}
	id, err := r.reports.SaveReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	report.ID = id

	r.log.WithFields(logrus.Fields{
		"report_type": reportType,
		"rows":        len(rows),
		"path":        path,
		"actor":       generatedBy,
	}).Info("report generated")

	return &report, nil
}

func (r *ReportService) List(ctx context.Context) ([]domain.Report, error) {
	return r.reports.ListReports(ctx)
}

func (r *ReportService) Delete(ctx context.Context, id int64) error {
	return r.reports.DeleteReport(ctx, id)
}

func (r *ReportService) buildRows(ctx context.Context, reportType string) ([]string, [][]string, error) {
	switch reportType {
	case ReportInventory:
		supplies, err := r.supplies.List(ctx, domain.SupplyFilter{})
		if err != nil {
			return nil, nil, err
		}
		return supplyHeader, supplyRows(supplies), nil
	case ReportLowStock:
		supplies, err := r.views.LowStock(ctx)
		if err != nil {
			return nil, nil, err
		}
		return supplyHeader, supplyRows(supplies), nil
	case ReportExpiring:
		supplies, err := r.views.ExpiringWithin(ctx, 30)
		if err != nil {
			return nil, nil, err
		}
		return supplyHeader, supplyRows(supplies), nil
	case ReportExpired:
		supplies, err := r.views.Expired(ctx)
		if err != nil {
			return nil, nil, err
		}
		return supplyHeader, supplyRows(supplies), nil
	case ReportTransactions:
		entries, err := r.ledger.ListSince(ctx, 30*24*time.Hour)
		if err != nil {
			return nil, nil, err
		}
		return entryHeader, entryRows(entries), nil
	default:
		return nil, nil, &domain.ValidationError{Fields: map[string]string{
			"report_type": "must be one of inventory, low-stock, expiring, expired, transactions",
		}}
	}
}

var supplyHeader = []string{"ID", "Name", "Category", "Quantity", "Expiry Date", "Location", "Supplier", "Reorder Threshold"}

func supplyRows(supplies []domain.Supply) [][]string {
	rows := make([][]string, 0, len(supplies))
	for _, s := range supplies {
		expiry := ""
		if s.ExpiryDate != nil {
			expiry = s.ExpiryDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			s.Category,
			strconv.Itoa(s.Quantity),
			expiry,
			s.Location,
			s.Supplier,
			strconv.Itoa(s.ReorderThreshold),
		})
	}
	return rows
}

var entryHeader = []string{"ID", "Supply", "Direction", "Magnitude", "Before", "After", "Reason", "Actor", "Date"}

func entryRows(entries []domain.LedgerEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.SupplyLabel,
			string(e.Direction),
			strconv.Itoa(e.Magnitude),
			strconv.Itoa(e.QuantityBefore),
			strconv.Itoa(e.QuantityAfter),
			e.Reason,
			e.Actor,
			e.Timestamp.Format(time.RFC3339),
		})
	}
	return rows
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
