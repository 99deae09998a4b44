package service

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ybakri/medstock/internal/core/domain"
)

type fakeReportStore struct {
	mu      sync.Mutex
	reports []domain.Report
	nextID  int64
}

func (f *fakeReportStore) SaveReport(ctx context.Context, report domain.Report) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	report.ID = f.nextID
	f.reports = append(f.reports, report)
	return report.ID, nil
}

func (f *fakeReportStore) ListReports(ctx context.Context) ([]domain.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Report, len(f.reports))
	copy(out, f.reports)
	return out, nil
}

func (f *fakeReportStore) DeleteReport(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.reports {
		if r.ID == id {
			f.reports = append(f.reports[:i], f.reports[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func newTestReports(t *testing.T, store *fakeStore) (*ReportService, *fakeReportStore) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	views := newTestViews(store)
	reportStore := &fakeReportStore{}
	return NewReportService(store, store, views, reportStore, t.TempDir(), log), reportStore
}

func TestGenerateReport_LowStock(t *testing.T) {
	store := newFakeStore()
	seedViews(t, store)
	svc, reportStore := newTestReports(t, store)

	report, err := svc.Generate(context.Background(), ReportLowStock, "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if report.ID == 0 {
		t.Error("expected a bookkeeping id")
	}

	f, err := os.Open(report.FilePath)
	if err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	// Header plus the two low-stock supplies from the seed data.
	if len(rows) != 3 {
		t.Fatalf("expected 3 csv rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "Name" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][1] != "Gloves" {
		t.Errorf("expected Gloves first, got %q", rows[1][1])
	}

	saved, _ := reportStore.ListReports(context.Background())
	if len(saved) != 1 || saved[0].ReportType != ReportLowStock || saved[0].GeneratedBy != "admin" {
		t.Errorf("unexpected bookkeeping rows: %+v", saved)
	}
}

func TestGenerateReport_Transactions(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	reports, _ := newTestReports(t, store)

	sup, _ := svc.CreateSupply(context.Background(), draft("Paracetamol", 10), "admin")
	if _, err := svc.AdjustQuantity(context.Background(), sup.ID, -4, "nurse", "dispensed"); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	report, err := reports.Generate(context.Background(), ReportTransactions, "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	f, err := os.Open(report.FilePath)
	if err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 entries, got %d rows", len(rows))
	}
	// Newest first: the dispense, then the opening entry.
	if rows[1][2] != "OUT" || rows[2][2] != "IN" {
		t.Errorf("unexpected directions: %v / %v", rows[1], rows[2])
	}
}

func TestGenerateReport_UnknownType(t *testing.T) {
	store := newFakeStore()
	svc, reportStore := newTestReports(t, store)

	_, err := svc.Generate(context.Background(), "weekly-horoscope", "admin")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(reportStore.reports) != 0 {
		t.Error("no bookkeeping row may be written for a rejected type")
	}
}

func TestDeleteReport(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestReports(t, store)

	report, err := svc.Generate(context.Background(), ReportInventory, "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if err := svc.Delete(context.Background(), report.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(context.Background(), report.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
