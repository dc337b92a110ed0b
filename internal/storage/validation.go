// Package storage provides the data persistence layer for the task tracker.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidTask      = errors.New("invalid task")
	ErrInvalidRule      = errors.New("invalid automation rule")
	ErrInvalidPeriod    = errors.New("invalid reporting period")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTask validates a single task.
func validateTask(task *model.Task) error {
	if task == nil {
		return fmt.Errorf("%w: task", ErrNilParameter)
	}
	if task.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTask)
	}
	return nil
}

// validateRuleInput validates a rule create/update payload. An empty
// pattern is allowed; such rules simply never match.
func validateRuleInput(input service.RuleInput) error {
	if !input.Trigger.Valid() {
		return fmt.Errorf("%w: unknown trigger %q", ErrInvalidRule, input.Trigger)
	}
	if strings.TrimSpace(input.CategoryName) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidRule)
	}
	return nil
}

// validatePeriod validates a reporting period against its invariant.
func validatePeriod(period *model.ReportingPeriod) error {
	if period == nil {
		return fmt.Errorf("%w: period", ErrNilParameter)
	}
	if period.PeriodStart.IsZero() || period.NextStartDate.IsZero() {
		return fmt.Errorf("%w: missing dates", ErrInvalidPeriod)
	}
	if !period.NextStartDate.Equal(period.PeriodStart.AddDate(0, 0, model.PeriodDays)) {
		return fmt.Errorf("%w: next start must be period start plus %d days", ErrInvalidPeriod, model.PeriodDays)
	}
	return nil
}
