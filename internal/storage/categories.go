package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/reginabally/task-tracker/internal/common"
	"github.com/reginabally/task-tracker/internal/model"
)

// ListCategories returns all categories ordered by sort order, ties broken
// by label (case-sensitive).
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listCategories(ctx, s.db)
}

func (s *SQLiteStorage) listCategories(ctx context.Context, q dbtx) ([]model.Category, error) {
	query := `
		SELECT id, name, label, sort_order, created_at
		FROM categories
		ORDER BY sort_order ASC, label ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Label, &cat.SortOrder, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns a category by its system name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getCategoryByName(ctx, s.db, name)
}

func (s *SQLiteStorage) getCategoryByName(ctx context.Context, q dbtx, name string) (*model.Category, error) {
	query := `
		SELECT id, name, label, sort_order, created_at
		FROM categories
		WHERE name = ?`

	var cat model.Category
	err := q.QueryRowContext(ctx, query, name).Scan(
		&cat.ID, &cat.Name, &cat.Label, &cat.SortOrder, &cat.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// GetCategoryByID returns a category by its id.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoryByID(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryByID(ctx context.Context, q dbtx, id int64) (*model.Category, error) {
	query := `
		SELECT id, name, label, sort_order, created_at
		FROM categories
		WHERE id = ?`

	var cat model.Category
	err := q.QueryRowContext(ctx, query, id).Scan(
		&cat.ID, &cat.Name, &cat.Label, &cat.SortOrder, &cat.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// CreateCategory creates a new category from a display label. The system
// name is derived from the label; the new category sorts after all
// existing ones.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, label string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "label"); err != nil {
		return nil, err
	}
	return s.createCategory(ctx, s.db, label)
}

func (s *SQLiteStorage) createCategory(ctx context.Context, q dbtx, label string) (*model.Category, error) {
	label = strings.TrimSpace(label)
	name := model.DeriveCategoryName(label)

	if err := s.checkCategoryCollision(ctx, q, name, label, 0); err != nil {
		return nil, err
	}

	// New categories go last in the display order.
	var maxOrder sql.NullInt64
	if err := q.QueryRowContext(ctx, `SELECT MAX(sort_order) FROM categories`).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("failed to query max sort order: %w", err)
	}
	newOrder := int64(0)
	if maxOrder.Valid {
		newOrder = maxOrder.Int64 + 1
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO categories (name, label, sort_order) VALUES (?, ?, ?)`,
		name, label, newOrder,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created category", "name", name, "id", id)
	return s.getCategoryByID(ctx, q, id)
}

// UpdateCategory renames a category; the system name is re-derived from the
// new label.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int64, label string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "label"); err != nil {
		return nil, err
	}
	return s.updateCategory(ctx, s.db, id, label)
}

func (s *SQLiteStorage) updateCategory(ctx context.Context, q dbtx, id int64, label string) (*model.Category, error) {
	label = strings.TrimSpace(label)
	name := model.DeriveCategoryName(label)

	if err := s.checkCategoryCollision(ctx, q, name, label, id); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE categories SET name = ?, label = ? WHERE id = ?`,
		name, label, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}

	return s.getCategoryByID(ctx, q, id)
}

// DeleteCategory removes a category. The delete is blocked while any task
// or automation rule still references it.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteCategory(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteCategory(ctx context.Context, q dbtx, id int64) error {
	var refs int
	err := q.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM tasks WHERE category_id = ?)
		     + (SELECT COUNT(*) FROM automation_rules WHERE category_id = ?)`,
		id, id,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count category references: %w", err)
	}
	if refs > 0 {
		return common.NewInUseError("category", refs)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}

	slog.Info("deleted category", "id", id)
	return nil
}

// SetCategorySortOrder moves a category to the given position in the
// display and report ordering.
func (s *SQLiteStorage) SetCategorySortOrder(ctx context.Context, id int64, sortOrder int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.setCategorySortOrder(ctx, s.db, id, sortOrder)
}

func (s *SQLiteStorage) setCategorySortOrder(ctx context.Context, q dbtx, id int64, sortOrder int) error {
	result, err := q.ExecContext(ctx,
		`UPDATE categories SET sort_order = ? WHERE id = ?`,
		sortOrder, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update sort order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// checkCategoryCollision rejects a derived name or trimmed label that
// collides with another category. excludeID skips the row being updated.
func (s *SQLiteStorage) checkCategoryCollision(ctx context.Context, q dbtx, name, label string, excludeID int64) error {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE (name = ? OR label = ?) AND id != ?`,
		name, label, excludeID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check existing category: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("category %q: %w", label, common.ErrDuplicateEntry)
	}
	return nil
}
