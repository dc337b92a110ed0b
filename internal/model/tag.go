package model

import (
	"strings"
	"time"
)

// Tag is a free-form or rule-assigned label attached to tasks many-to-many.
type Tag struct {
	CreatedAt time.Time
	Name      string
	Label     string
	ID        int64
}

// DeriveTagName converts a display label to a tag system name: trimmed,
// lowercased, whitespace runs replaced with hyphens. "High Priority"
// becomes "high-priority".
func DeriveTagName(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "-")
}
