package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reginabally/task-tracker/internal/common"
	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/service"
)

// CreateTask persists a task together with its tag set. Tag names are
// resolved to existing tags or created on the fly; the task row, any new
// tags and the join rows commit atomically.
func (s *SQLiteStorage) CreateTask(ctx context.Context, task *model.Task, tagNames []string) (*model.TaskDetail, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	detail, err := s.createTask(ctx, tx, task, tagNames)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task: %w", err)
	}

	slog.Info("created task", "id", detail.ID, "date", detail.Date.Format("2006-01-02"))
	return detail, nil
}

func (s *SQLiteStorage) createTask(ctx context.Context, q dbtx, task *model.Task, tagNames []string) (*model.TaskDetail, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO tasks (description, category_id, date, link) VALUES (?, ?, ?, ?)`,
		nullString(task.Description), nullID(task.CategoryID), task.Date, nullString(task.Link),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get task ID: %w", err)
	}
	task.ID = id

	if err := s.replaceTaskTags(ctx, q, id, tagNames); err != nil {
		return nil, err
	}

	return s.getTaskByID(ctx, q, id)
}

// UpdateTask rewrites a task and replaces its tag set, atomically.
func (s *SQLiteStorage) UpdateTask(ctx context.Context, task *model.Task, tagNames []string) (*model.TaskDetail, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	detail, err := s.updateTask(ctx, tx, task, tagNames)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit task update: %w", err)
	}

	return detail, nil
}

func (s *SQLiteStorage) updateTask(ctx context.Context, q dbtx, task *model.Task, tagNames []string) (*model.TaskDetail, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE tasks SET description = ?, category_id = ?, date = ?, link = ? WHERE id = ?`,
		nullString(task.Description), nullID(task.CategoryID), task.Date, nullString(task.Link), task.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("task %d: %w", task.ID, common.ErrNotFound)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, task.ID); err != nil {
		return nil, fmt.Errorf("failed to clear task tags: %w", err)
	}
	if err := s.replaceTaskTags(ctx, q, task.ID, tagNames); err != nil {
		return nil, err
	}

	return s.getTaskByID(ctx, q, task.ID)
}

// DeleteTask removes a task and its tag associations.
func (s *SQLiteStorage) DeleteTask(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteTask(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteTask(ctx context.Context, q dbtx, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// GetTaskByID returns a task with category and tags resolved.
func (s *SQLiteStorage) GetTaskByID(ctx context.Context, id int64) (*model.TaskDetail, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTaskByID(ctx, s.db, id)
}

func (s *SQLiteStorage) getTaskByID(ctx context.Context, q dbtx, id int64) (*model.TaskDetail, error) {
	query := `
		SELECT t.id, t.description, t.category_id, t.date, t.link, t.created_at,
		       c.name, c.label, c.sort_order
		FROM tasks t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = ?`

	detail, err := scanTaskRow(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}

	tags, err := s.loadTaskTags(ctx, q, id)
	if err != nil {
		return nil, err
	}
	detail.Tags = tags

	return detail, nil
}

// ListTasks returns tasks matching the filter, newest first. Date bounds
// are inclusive; an end date without a clock time covers its whole day.
func (s *SQLiteStorage) ListTasks(ctx context.Context, filter service.TaskFilter) ([]model.TaskDetail, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listTasks(ctx, s.db, filter)
}

func (s *SQLiteStorage) listTasks(ctx context.Context, q dbtx, filter service.TaskFilter) ([]model.TaskDetail, error) {
	query := `
		SELECT t.id, t.description, t.category_id, t.date, t.link, t.created_at,
		       c.name, c.label, c.sort_order
		FROM tasks t
		LEFT JOIN categories c ON c.id = t.category_id`

	var conditions []string
	var args []any

	if filter.Category != "" {
		conditions = append(conditions, "c.name = ?")
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		conditions = append(conditions, `EXISTS (
			SELECT 1 FROM task_tags tt
			JOIN tags tg ON tg.id = tt.tag_id
			WHERE tt.task_id = t.id AND tg.name = ?)`)
		args = append(args, filter.Tag)
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, fmt.Errorf("%w: end %v before start %v", ErrInvalidDateRange, filter.End, filter.Start)
	}
	if filter.Start != nil {
		conditions = append(conditions, "t.date >= ?")
		args = append(args, *filter.Start)
	}
	if filter.End != nil {
		conditions = append(conditions, "t.date <= ?")
		args = append(args, widenToEndOfDay(*filter.End))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY t.date DESC, t.id DESC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []model.TaskDetail
	for rows.Next() {
		detail, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	for i := range tasks {
		tags, err := s.loadTaskTags(ctx, q, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Tags = tags
	}

	slog.Debug("retrieved tasks", "count", len(tasks))
	return tasks, nil
}

// replaceTaskTags resolves tag names and writes the join rows for a task.
// Unknown names become new tags; the input is treated as display labels, so
// "Slack Ping" and "slack-ping" resolve to the same tag.
func (s *SQLiteStorage) replaceTaskTags(ctx context.Context, q dbtx, taskID int64, tagNames []string) error {
	seen := make(map[string]bool, len(tagNames))
	for _, raw := range tagNames {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name := model.DeriveTagName(raw)
		if seen[name] {
			continue
		}
		seen[name] = true

		tag, err := s.getTagByName(ctx, q, name)
		if errors.Is(err, common.ErrNotFound) {
			tag, err = s.createTag(ctx, q, raw)
		}
		if err != nil {
			return err
		}

		if _, err := q.ExecContext(ctx,
			`INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)`,
			taskID, tag.ID,
		); err != nil {
			return fmt.Errorf("failed to attach tag %q: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) loadTaskTags(ctx context.Context, q dbtx, taskID int64) ([]model.Tag, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT tg.id, tg.name, tg.label, tg.created_at
		FROM task_tags tt
		JOIN tags tg ON tg.id = tt.tag_id
		WHERE tt.task_id = ?
		ORDER BY tg.label COLLATE NOCASE ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query task tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tags []model.Tag
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Label, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task tags: %w", err)
	}

	return tags, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row scanner) (*model.TaskDetail, error) {
	var detail model.TaskDetail
	var description, link sql.NullString
	var categoryID sql.NullInt64
	var catName, catLabel sql.NullString
	var catSortOrder sql.NullInt64

	err := row.Scan(
		&detail.ID, &description, &categoryID, &detail.Date, &link, &detail.CreatedAt,
		&catName, &catLabel, &catSortOrder,
	)
	if err != nil {
		return nil, err
	}

	detail.Description = description.String
	detail.Link = link.String
	if categoryID.Valid {
		detail.CategoryID = categoryID.Int64
		detail.Category = &model.Category{
			ID:        categoryID.Int64,
			Name:      catName.String,
			Label:     catLabel.String,
			SortOrder: int(catSortOrder.Int64),
		}
	}

	return &detail, nil
}

// widenToEndOfDay pushes a midnight timestamp to the last instant of its
// day so date-only filters include the whole end day.
func widenToEndOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
