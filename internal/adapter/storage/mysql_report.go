package storage

import (
	"context"
	"fmt"

	"github.com/ybakri/medstock/internal/core/domain"
)

func (m *MySQLStore) SaveReport(ctx context.Context, report domain.Report) (int64, error) {
	res, err := m.db.ExecContext(ctx, `
		INSERT INTO reports (report_type, report_date, generated_by, file_path)
		VALUES (?, ?, ?, ?)`,
		report.ReportType, report.ReportDate.Format("2006-01-02"), report.GeneratedBy, report.FilePath,
	)
	if err != nil {
		return 0, fmt.Errorf("save report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save report id: %w", err)
	}
	return id, nil
}

func (m *MySQLStore) ListReports(ctx context.Context) ([]domain.Report, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, report_type, report_date, generated_by, file_path, created_at
		FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]domain.Report, 0)
	for rows.Next() {
		var r domain.Report
		if err := rows.Scan(&r.ID, &r.ReportType, &r.ReportDate, &r.GeneratedBy, &r.FilePath, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

func (m *MySQLStore) DeleteReport(ctx context.Context, id int64) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("report %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
