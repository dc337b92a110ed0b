// Package period maintains the rolling bi-weekly reporting window used to
// scope HR self-feedback reports.
package period

import (
	"context"
	"fmt"
	"time"

	"github.com/reginabally/task-tracker/internal/model"
)

// Store is the slice of the persistence layer the manager needs.
type Store interface {
	GetReportingPeriod(ctx context.Context) (*model.ReportingPeriod, error)
	SaveReportingPeriod(ctx context.Context, period *model.ReportingPeriod) error
}

// Window is the inclusive date range reports are scoped to: period start at
// midnight through the thirteenth following day at end of day.
type Window struct {
	Start time.Time
	End   time.Time
}

// Manager owns the persisted period anchor and its rollover.
type Manager struct {
	store Store
}

// NewManager creates a period manager backed by the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Current returns the reporting window for now. On first use the anchor is
// initialized to the most recent Friday on or before now. When now has
// reached the next boundary the anchor advances by exactly one 14-day step
// and is persisted; a gap longer than two periods therefore needs one
// additional read per missed period to catch up.
func (m *Manager) Current(ctx context.Context, now time.Time) (Window, error) {
	persisted, err := m.store.GetReportingPeriod(ctx)
	if err != nil {
		return Window{}, fmt.Errorf("failed to load reporting period: %w", err)
	}

	if persisted == nil {
		start := lastFriday(now)
		persisted = &model.ReportingPeriod{
			PeriodStart:   start,
			NextStartDate: start.AddDate(0, 0, model.PeriodDays),
		}
		if err := m.store.SaveReportingPeriod(ctx, persisted); err != nil {
			return Window{}, fmt.Errorf("failed to initialize reporting period: %w", err)
		}
	}

	if !truncateToDay(now).Before(truncateToDay(persisted.NextStartDate)) {
		persisted.PeriodStart = persisted.NextStartDate
		persisted.NextStartDate = persisted.PeriodStart.AddDate(0, 0, model.PeriodDays)
		if err := m.store.SaveReportingPeriod(ctx, persisted); err != nil {
			return Window{}, fmt.Errorf("failed to roll over reporting period: %w", err)
		}
	}

	return windowFrom(persisted.PeriodStart), nil
}

// Set overrides the period anchor; the next boundary is recomputed as the
// new start plus 14 days and subsequent rollovers proceed from it.
func (m *Manager) Set(ctx context.Context, start time.Time) (Window, error) {
	start = truncateToDay(start)
	persisted := &model.ReportingPeriod{
		PeriodStart:   start,
		NextStartDate: start.AddDate(0, 0, model.PeriodDays),
	}
	if err := m.store.SaveReportingPeriod(ctx, persisted); err != nil {
		return Window{}, fmt.Errorf("failed to save reporting period: %w", err)
	}

	return windowFrom(start), nil
}

func windowFrom(start time.Time) Window {
	end := start.AddDate(0, 0, model.PeriodDays-1)
	return Window{
		Start: start,
		End:   time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), end.Location()),
	}
}

// lastFriday returns the most recent Friday on or before t, truncated to
// midnight. A Friday maps to itself.
func lastFriday(t time.Time) time.Time {
	offset := (int(t.Weekday()) - int(time.Friday) + 7) % 7
	return truncateToDay(t).AddDate(0, 0, -offset)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
