package model

import "time"

// Task is a single logged work item. CategoryID is zero for uncategorized
// tasks; Description and Link are optional.
type Task struct {
	CreatedAt   time.Time
	Date        time.Time
	Description string
	Link        string
	ID          int64
	CategoryID  int64
}

// TaskDetail is a task with its category and tags resolved, as consumed by
// listings and the report generator. Category is nil for uncategorized tasks.
type TaskDetail struct {
	Category *Category
	Task
	Tags []Tag
}

// HasTag reports whether the task carries a tag with the given system name.
func (t *TaskDetail) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}
