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

// ListTags returns all tags ordered case-insensitively by label.
func (s *SQLiteStorage) ListTags(ctx context.Context) ([]model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listTags(ctx, s.db)
}

func (s *SQLiteStorage) listTags(ctx context.Context, q dbtx) ([]model.Tag, error) {
	query := `
		SELECT id, name, label, created_at
		FROM tags
		ORDER BY label COLLATE NOCASE ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []model.Tag
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Label, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// GetTagByName returns a tag by its system name.
func (s *SQLiteStorage) GetTagByName(ctx context.Context, name string) (*model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getTagByName(ctx, s.db, name)
}

func (s *SQLiteStorage) getTagByName(ctx context.Context, q dbtx, name string) (*model.Tag, error) {
	var tag model.Tag
	err := q.QueryRowContext(ctx,
		`SELECT id, name, label, created_at FROM tags WHERE name = ?`,
		name,
	).Scan(&tag.ID, &tag.Name, &tag.Label, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}

	return &tag, nil
}

func (s *SQLiteStorage) getTagByID(ctx context.Context, q dbtx, id int64) (*model.Tag, error) {
	var tag model.Tag
	err := q.QueryRowContext(ctx,
		`SELECT id, name, label, created_at FROM tags WHERE id = ?`,
		id,
	).Scan(&tag.ID, &tag.Name, &tag.Label, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("tag %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tag: %w", err)
	}

	return &tag, nil
}

// CreateTag creates a new tag from a display label. The system name is
// derived from the label.
func (s *SQLiteStorage) CreateTag(ctx context.Context, label string) (*model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "label"); err != nil {
		return nil, err
	}
	return s.createTag(ctx, s.db, label)
}

func (s *SQLiteStorage) createTag(ctx context.Context, q dbtx, label string) (*model.Tag, error) {
	label = strings.TrimSpace(label)
	name := model.DeriveTagName(label)

	if err := s.checkTagCollision(ctx, q, name, label, 0); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO tags (name, label) VALUES (?, ?)`,
		name, label,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get tag ID: %w", err)
	}

	slog.Info("created tag", "name", name, "id", id)
	return s.getTagByID(ctx, q, id)
}

// UpdateTag renames a tag; the system name is re-derived from the new label.
func (s *SQLiteStorage) UpdateTag(ctx context.Context, id int64, label string) (*model.Tag, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(label, "label"); err != nil {
		return nil, err
	}
	return s.updateTag(ctx, s.db, id, label)
}

func (s *SQLiteStorage) updateTag(ctx context.Context, q dbtx, id int64, label string) (*model.Tag, error) {
	label = strings.TrimSpace(label)
	name := model.DeriveTagName(label)

	if err := s.checkTagCollision(ctx, q, name, label, id); err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE tags SET name = ?, label = ? WHERE id = ?`,
		name, label, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("tag %d: %w", id, common.ErrNotFound)
	}

	return s.getTagByID(ctx, q, id)
}

// DeleteTag removes a tag. The delete is blocked while any task or
// automation rule still references it.
func (s *SQLiteStorage) DeleteTag(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteTag(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteTag(ctx context.Context, q dbtx, id int64) error {
	var refs int
	err := q.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM task_tags WHERE tag_id = ?)
		     + (SELECT COUNT(*) FROM automation_rule_tags WHERE tag_id = ?)`,
		id, id,
	).Scan(&refs)
	if err != nil {
		return fmt.Errorf("failed to count tag references: %w", err)
	}
	if refs > 0 {
		return common.NewInUseError("tag", refs)
	}

	result, err := q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("tag %d: %w", id, common.ErrNotFound)
	}

	slog.Info("deleted tag", "id", id)
	return nil
}

// checkTagCollision rejects a derived name or trimmed label colliding with
// another tag. excludeID skips the row being updated.
func (s *SQLiteStorage) checkTagCollision(ctx context.Context, q dbtx, name, label string, excludeID int64) error {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE (name = ? OR label = ?) AND id != ?`,
		name, label, excludeID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check existing tag: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("tag %q: %w", label, common.ErrDuplicateEntry)
	}
	return nil
}
