// Package model defines the core data structures for the task tracker.
package model

import (
	"regexp"
	"strings"
	"time"
)

// Category classifies a task (e.g. "Manual Review Work"). Its Name is the
// system identifier derived from the display label; SortOrder controls the
// position of the category in listings and reports.
type Category struct {
	CreatedAt time.Time
	Name      string
	Label     string
	ID        int64
	SortOrder int
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DeriveCategoryName converts a display label to a category system name:
// trimmed, uppercased, whitespace runs replaced with underscores.
// "Code Review" becomes "CODE_REVIEW".
func DeriveCategoryName(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToUpper(strings.TrimSpace(label)), "_")
}
