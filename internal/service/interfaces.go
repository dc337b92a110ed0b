// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/reginabally/task-tracker/internal/model"
)

// TaskFilter defines filtering options for task queries. Category and Tag
// are system names; date bounds are inclusive on both ends, and End is
// widened to end-of-day when it carries no clock time.
type TaskFilter struct {
	Start    *time.Time
	End      *time.Time
	Category string
	Tag      string
}

// RuleInput is the name-resolved shape accepted by rule create and update.
// The category must exist; unknown tag names are skipped.
type RuleInput struct {
	Trigger      model.TriggerField
	Pattern      string
	CategoryName string
	TagNames     []string
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Task operations. Create and update resolve tag names, creating
	// missing tags, atomically with the task write.
	CreateTask(ctx context.Context, task *model.Task, tagNames []string) (*model.TaskDetail, error)
	UpdateTask(ctx context.Context, task *model.Task, tagNames []string) (*model.TaskDetail, error)
	DeleteTask(ctx context.Context, id int64) error
	GetTaskByID(ctx context.Context, id int64) (*model.TaskDetail, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.TaskDetail, error)

	// Category operations.
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, label string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, label string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	SetCategorySortOrder(ctx context.Context, id int64, sortOrder int) error

	// Tag operations.
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTagByName(ctx context.Context, name string) (*model.Tag, error)
	CreateTag(ctx context.Context, label string) (*model.Tag, error)
	UpdateTag(ctx context.Context, id int64, label string) (*model.Tag, error)
	DeleteTag(ctx context.Context, id int64) error

	// Automation rule operations.
	ListRules(ctx context.Context) ([]model.AutomationRule, error)
	GetRuleByID(ctx context.Context, id int64) (*model.AutomationRule, error)
	CreateRule(ctx context.Context, input RuleInput) (*model.AutomationRule, error)
	UpdateRule(ctx context.Context, id int64, input RuleInput) (*model.AutomationRule, error)
	DeleteRule(ctx context.Context, id int64) error

	// Reporting period singleton. Get returns nil when no period has been
	// persisted yet.
	GetReportingPeriod(ctx context.Context) (*model.ReportingPeriod, error)
	SaveReportingPeriod(ctx context.Context, period *model.ReportingPeriod) error

	// Typed settings.
	GetAIConfig(ctx context.Context) (*model.AIConfig, error)
	SaveAIConfig(ctx context.Context, cfg *model.AIConfig) error
	GetPreviousFeedback(ctx context.Context) (string, error)
	SavePreviousFeedback(ctx context.Context, text string) error

	// Database management.
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// RetryOptions configures retry behavior for external calls.
type RetryOptions struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
}
