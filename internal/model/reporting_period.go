package model

import "time"

// PeriodDays is the fixed length of a reporting period in calendar days.
const PeriodDays = 14

// ReportingPeriod is the persisted singleton anchoring the rolling
// bi-weekly window. Invariant: NextStartDate == PeriodStart + 14 days.
type ReportingPeriod struct {
	PeriodStart   time.Time
	NextStartDate time.Time
}
