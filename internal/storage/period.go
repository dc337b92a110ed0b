package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/reginabally/task-tracker/internal/model"
)

// GetReportingPeriod reads the reporting-period singleton. It returns nil
// (and no error) when no period has been persisted yet.
func (s *SQLiteStorage) GetReportingPeriod(ctx context.Context) (*model.ReportingPeriod, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getReportingPeriod(ctx, s.db)
}

func (s *SQLiteStorage) getReportingPeriod(ctx context.Context, q dbtx) (*model.ReportingPeriod, error) {
	var period model.ReportingPeriod
	err := q.QueryRowContext(ctx,
		`SELECT period_start, next_start_date FROM reporting_period WHERE id = 1`,
	).Scan(&period.PeriodStart, &period.NextStartDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reporting period: %w", err)
	}

	return &period, nil
}

// SaveReportingPeriod upserts the reporting-period singleton.
func (s *SQLiteStorage) SaveReportingPeriod(ctx context.Context, period *model.ReportingPeriod) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePeriod(period); err != nil {
		return err
	}
	return s.saveReportingPeriod(ctx, s.db, period)
}

func (s *SQLiteStorage) saveReportingPeriod(ctx context.Context, q dbtx, period *model.ReportingPeriod) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO reporting_period (id, period_start, next_start_date)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			period_start = excluded.period_start,
			next_start_date = excluded.next_start_date`,
		period.PeriodStart, period.NextStartDate,
	)
	if err != nil {
		return fmt.Errorf("failed to save reporting period: %w", err)
	}

	slog.Debug("saved reporting period",
		"period_start", period.PeriodStart.Format("2006-01-02"),
		"next_start_date", period.NextStartDate.Format("2006-01-02"))
	return nil
}
