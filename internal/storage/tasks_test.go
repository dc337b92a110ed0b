package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reginabally/task-tracker/internal/common"
	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/service"
)

// Helper function to build a valid task dated today.
func testTask(categoryID int64, description string) *model.Task {
	return &model.Task{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Description: description,
		CategoryID:  categoryID,
	}
}

func dateAt(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteStorage_CreateTask(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := store.GetCategoryByName(ctx, "MANUAL_REVIEW_WORK")
	if err != nil {
		t.Fatalf("Failed to get seeded category: %v", err)
	}

	detail, err := store.CreateTask(ctx, &model.Task{
		Date:        dateAt(2024, 3, 15),
		Description: "Reviewed flagged cases",
		Link:        "https://example.com/queue/42",
		CategoryID:  cat.ID,
	}, []string{"slack-ping", "triage"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if detail.ID == 0 {
		t.Error("Expected a non-zero ID")
	}
	if detail.Category == nil || detail.Category.Name != "MANUAL_REVIEW_WORK" {
		t.Errorf("Category = %+v, want MANUAL_REVIEW_WORK", detail.Category)
	}
	if len(detail.Tags) != 2 {
		t.Fatalf("Tags = %d, want 2", len(detail.Tags))
	}
	// "triage" did not exist and was created on the fly.
	if _, err := store.GetTagByName(ctx, "triage"); err != nil {
		t.Errorf("Expected triage tag to exist: %v", err)
	}
}

func TestSQLiteStorage_CreateTask_uncategorized(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	detail, err := store.CreateTask(ctx, testTask(0, "quick note"), nil)
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if detail.Category != nil {
		t.Errorf("Expected nil category, got %+v", detail.Category)
	}
	if len(detail.Tags) != 0 {
		t.Errorf("Expected no tags, got %d", len(detail.Tags))
	}
}

func TestSQLiteStorage_CreateTask_missingDate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.CreateTask(context.Background(), &model.Task{Description: "no date"}, nil)
	if !errors.Is(err, ErrInvalidTask) {
		t.Errorf("Expected ErrInvalidTask, got %v", err)
	}
}

func TestSQLiteStorage_CreateTask_dedupsTagNames(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	// "Slack Ping" derives to the seeded slack-ping tag.
	detail, err := store.CreateTask(ctx, testTask(0, "answered a ping"),
		[]string{"slack-ping", "Slack Ping", " ", "slack-ping"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if len(detail.Tags) != 1 {
		t.Errorf("Tags = %d, want 1 after dedup", len(detail.Tags))
	}
}

func TestSQLiteStorage_UpdateTask(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	detail, err := store.CreateTask(ctx, testTask(0, "initial"), []string{"triage"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	task := detail.Task
	task.Description = "rewritten"
	task.Link = "https://example.com/pr/7"

	updated, err := store.UpdateTask(ctx, &task, []string{"code-review"})
	if err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}
	if updated.Description != "rewritten" {
		t.Errorf("Description = %q, want %q", updated.Description, "rewritten")
	}
	if len(updated.Tags) != 1 || updated.Tags[0].Name != "code-review" {
		t.Errorf("Tags = %+v, want just code-review", updated.Tags)
	}
}

func TestSQLiteStorage_UpdateTask_notFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	task := testTask(0, "ghost")
	task.ID = 9999
	_, err := store.UpdateTask(context.Background(), task, nil)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_DeleteTask(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	detail, err := store.CreateTask(ctx, testTask(0, "to delete"), []string{"triage"})
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	if err := store.DeleteTask(ctx, detail.ID); err != nil {
		t.Fatalf("Failed to delete task: %v", err)
	}

	_, err = store.GetTaskByID(ctx, detail.ID)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	// The tag itself survives; only the association goes.
	if _, err := store.GetTagByName(ctx, "triage"); err != nil {
		t.Errorf("Tag deleted along with task: %v", err)
	}
}

func TestSQLiteStorage_ListTasks_filters(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	manual, err := store.GetCategoryByName(ctx, "MANUAL_REVIEW_WORK")
	if err != nil {
		t.Fatalf("Failed to get seeded category: %v", err)
	}

	seed := []struct {
		date     time.Time
		desc     string
		category int64
		tags     []string
	}{
		{dateAt(2024, 2, 28), "old ping", manual.ID, []string{"slack-ping"}},
		{dateAt(2024, 2, 29), "leap day review", manual.ID, nil},
		{dateAt(2024, 3, 1), "march task", 0, []string{"triage"}},
		{dateAt(2024, 3, 2), "another march task", 0, nil},
	}
	for _, s := range seed {
		if _, err := store.CreateTask(ctx, &model.Task{
			Date: s.date, Description: s.desc, CategoryID: s.category,
		}, s.tags); err != nil {
			t.Fatalf("Failed to seed task %q: %v", s.desc, err)
		}
	}

	tests := []struct {
		name   string
		filter service.TaskFilter
		want   []string
	}{
		{
			name:   "no filter, newest first",
			filter: service.TaskFilter{},
			want:   []string{"another march task", "march task", "leap day review", "old ping"},
		},
		{
			name:   "by category",
			filter: service.TaskFilter{Category: "MANUAL_REVIEW_WORK"},
			want:   []string{"leap day review", "old ping"},
		},
		{
			name:   "by tag",
			filter: service.TaskFilter{Tag: "slack-ping"},
			want:   []string{"old ping"},
		},
		{
			name: "date range spanning leap day",
			filter: service.TaskFilter{
				Start: timePtr(dateAt(2024, 2, 29)),
				End:   timePtr(dateAt(2024, 3, 1)),
			},
			want: []string{"march task", "leap day review"},
		},
		{
			name: "end date covers its whole day",
			filter: service.TaskFilter{
				Start: timePtr(dateAt(2024, 3, 2)),
				End:   timePtr(dateAt(2024, 3, 2)),
			},
			want: []string{"another march task"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := store.ListTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTasks failed: %v", err)
			}
			if len(tasks) != len(tt.want) {
				t.Fatalf("Got %d tasks, want %d", len(tasks), len(tt.want))
			}
			for i, want := range tt.want {
				if tasks[i].Description != want {
					t.Errorf("tasks[%d] = %q, want %q", i, tasks[i].Description, want)
				}
			}
		})
	}
}

func TestSQLiteStorage_ListTasks_invalidRange(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.ListTasks(context.Background(), service.TaskFilter{
		Start: timePtr(dateAt(2024, 3, 10)),
		End:   timePtr(dateAt(2024, 3, 1)),
	})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
