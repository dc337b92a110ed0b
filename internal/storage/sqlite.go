package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// dbtx is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx, letting each query be written once and run either standalone or
// inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Storage methods delegate to the shared implementations with the
// transaction as the query target.

func (t *sqliteTransaction) CreateTask(ctx context.Context, task *model.Task, tagNames []string) (*model.TaskDetail, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	return t.storage.createTask(ctx, t.tx, task, tagNames)
}

func (t *sqliteTransaction) UpdateTask(ctx context.Context, task *model.Task, tagNames []string) (*model.TaskDetail, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	return t.storage.updateTask(ctx, t.tx, task, tagNames)
}

func (t *sqliteTransaction) DeleteTask(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteTask(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTaskByID(ctx context.Context, id int64) (*model.TaskDetail, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTaskByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListTasks(ctx context.Context, filter service.TaskFilter) ([]model.TaskDetail, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listTasks(ctx, t.tx, filter)
}

func (t *sqliteTransaction) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listCategories(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByName(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, label string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "label"); err != nil {
		return nil, err
	}
	return t.storage.createCategory(ctx, t.tx, label)
}

func (t *sqliteTransaction) UpdateCategory(ctx context.Context, id int64, label string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "label"); err != nil {
		return nil, err
	}
	return t.storage.updateCategory(ctx, t.tx, id, label)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteCategory(ctx, t.tx, id)
}

func (t *sqliteTransaction) SetCategorySortOrder(ctx context.Context, id int64, sortOrder int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.setCategorySortOrder(ctx, t.tx, id, sortOrder)
}

func (t *sqliteTransaction) ListTags(ctx context.Context) ([]model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listTags(ctx, t.tx)
}

func (t *sqliteTransaction) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getTagByName(ctx, t.tx, name)
}

func (t *sqliteTransaction) CreateTag(ctx context.Context, label string) (*model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "label"); err != nil {
		return nil, err
	}
	return t.storage.createTag(ctx, t.tx, label)
}

func (t *sqliteTransaction) UpdateTag(ctx context.Context, id int64, label string) (*model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "label"); err != nil {
		return nil, err
	}
	return t.storage.updateTag(ctx, t.tx, id, label)
}

func (t *sqliteTransaction) DeleteTag(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteTag(ctx, t.tx, id)
}

func (t *sqliteTransaction) ListRules(ctx context.Context) ([]model.AutomationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.listRules(ctx, t.tx)
}

func (t *sqliteTransaction) GetRuleByID(ctx context.Context, id int64) (*model.AutomationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getRuleByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) CreateRule(ctx context.Context, input service.RuleInput) (*model.AutomationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}
	return t.storage.createRule(ctx, t.tx, input)
}

func (t *sqliteTransaction) UpdateRule(ctx context.Context, id int64, input service.RuleInput) (*model.AutomationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}
	return t.storage.updateRule(ctx, t.tx, id, input)
}

func (t *sqliteTransaction) DeleteRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.deleteRule(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetReportingPeriod(ctx context.Context) (*model.ReportingPeriod, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getReportingPeriod(ctx, t.tx)
}

func (t *sqliteTransaction) SaveReportingPeriod(ctx context.Context, period *model.ReportingPeriod) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePeriod(period); err != nil {
		return err
	}
	return t.storage.saveReportingPeriod(ctx, t.tx, period)
}

func (t *sqliteTransaction) GetAIConfig(ctx context.Context) (*model.AIConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getAIConfig(ctx, t.tx)
}

func (t *sqliteTransaction) SaveAIConfig(ctx context.Context, cfg *model.AIConfig) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("%w: cfg", ErrNilParameter)
	}
	return t.storage.saveAIConfig(ctx, t.tx, cfg)
}

func (t *sqliteTransaction) GetPreviousFeedback(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	return t.storage.getSetting(ctx, t.tx, settingPreviousFeedback)
}

func (t *sqliteTransaction) SavePreviousFeedback(ctx context.Context, text string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return t.storage.setSetting(ctx, t.tx, settingPreviousFeedback, text)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
