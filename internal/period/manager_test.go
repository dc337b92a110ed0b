package period

import (
	"context"
	"testing"
	"time"

	"github.com/reginabally/task-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore keeps the period in memory and counts saves.
type fakeStore struct {
	period *model.ReportingPeriod
	saves  int
}

func (f *fakeStore) GetReportingPeriod(_ context.Context) (*model.ReportingPeriod, error) {
	if f.period == nil {
		return nil, nil
	}
	p := *f.period
	return &p, nil
}

func (f *fakeStore) SaveReportingPeriod(_ context.Context, period *model.ReportingPeriod) error {
	p := *period
	f.period = &p
	f.saves++
	return nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestManager_Current_initializesToLastFriday(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{"Wednesday anchors to previous Friday", date(2024, 1, 10), date(2024, 1, 5)},
		{"Friday anchors to itself", date(2024, 1, 5), date(2024, 1, 5)},
		{"Thursday anchors to the week before", date(2024, 1, 11), date(2024, 1, 5)},
		{"Saturday anchors to the day before", date(2024, 1, 6), date(2024, 1, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			manager := NewManager(store)

			window, err := manager.Current(context.Background(), tt.now)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStart, window.Start)
			assert.Equal(t, 1, store.saves, "initial anchor must be persisted")
			require.NotNil(t, store.period)
			assert.Equal(t, tt.wantStart.AddDate(0, 0, model.PeriodDays), store.period.NextStartDate)
		})
	}
}

func TestManager_Current_windowSpansFourteenDays(t *testing.T) {
	manager := NewManager(&fakeStore{})

	window, err := manager.Current(context.Background(), date(2024, 1, 10))
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 5), window.Start)
	// End is the 13th following day at the last instant before midnight.
	assert.Equal(t, time.Date(2024, 1, 18, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), window.End)
}

func TestManager_Current_noRolloverBeforeBoundary(t *testing.T) {
	store := &fakeStore{period: &model.ReportingPeriod{
		PeriodStart:   date(2024, 1, 5),
		NextStartDate: date(2024, 1, 19),
	}}
	manager := NewManager(store)

	// The last day of the window still belongs to it.
	window, err := manager.Current(context.Background(), date(2024, 1, 18))
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 5), window.Start)
	assert.Zero(t, store.saves)
}

func TestManager_Current_rollsOverOnBoundary(t *testing.T) {
	store := &fakeStore{period: &model.ReportingPeriod{
		PeriodStart:   date(2024, 1, 5),
		NextStartDate: date(2024, 1, 19),
	}}
	manager := NewManager(store)

	window, err := manager.Current(context.Background(), date(2024, 1, 19))
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 19), window.Start)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, date(2024, 2, 2), store.period.NextStartDate)
}

func TestManager_Current_rollsOverWithinBoundaryDay(t *testing.T) {
	store := &fakeStore{period: &model.ReportingPeriod{
		PeriodStart:   date(2024, 1, 5),
		NextStartDate: date(2024, 1, 19),
	}}
	manager := NewManager(store)

	// A clock time later in the boundary day still rolls over.
	now := time.Date(2024, 1, 19, 17, 30, 0, 0, time.UTC)
	window, err := manager.Current(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, date(2024, 1, 19), window.Start)
}

func TestManager_Current_staleAnchorAdvancesOneStepPerRead(t *testing.T) {
	// After more than two idle periods the anchor catches up one 14-day
	// step per read, not all at once.
	store := &fakeStore{period: &model.ReportingPeriod{
		PeriodStart:   date(2024, 1, 5),
		NextStartDate: date(2024, 1, 19),
	}}
	manager := NewManager(store)
	now := date(2024, 3, 1)

	window, err := manager.Current(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 1, 19), window.Start)

	window, err = manager.Current(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 2), window.Start)

	window, err = manager.Current(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 16), window.Start)
	assert.False(t, now.Before(window.Start), "anchor converges towards now")
}

func TestManager_Current_maintainsInvariant(t *testing.T) {
	store := &fakeStore{}
	manager := NewManager(store)

	_, err := manager.Current(context.Background(), date(2024, 1, 19))
	require.NoError(t, err)

	require.NotNil(t, store.period)
	assert.Equal(t,
		store.period.PeriodStart.AddDate(0, 0, model.PeriodDays),
		store.period.NextStartDate,
	)
}

func TestManager_Set(t *testing.T) {
	store := &fakeStore{period: &model.ReportingPeriod{
		PeriodStart:   date(2024, 1, 5),
		NextStartDate: date(2024, 1, 19),
	}}
	manager := NewManager(store)

	window, err := manager.Set(context.Background(), time.Date(2024, 3, 4, 15, 4, 5, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, date(2024, 3, 4), window.Start, "anchor is truncated to midnight")
	assert.Equal(t, date(2024, 3, 18), store.period.NextStartDate)

	// Rollover proceeds from the override.
	window, err = manager.Current(context.Background(), date(2024, 3, 18))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 18), window.Start)
}
