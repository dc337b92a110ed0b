package model

import "time"

// TriggerField identifies which task form field an automation rule watches.
type TriggerField string

const (
	// TriggerDescription matches rules against the task description.
	TriggerDescription TriggerField = "description"
	// TriggerLink matches rules against the task link.
	TriggerLink TriggerField = "link"
)

// Valid reports whether the trigger is one of the known field names.
func (f TriggerField) Valid() bool {
	return f == TriggerDescription || f == TriggerLink
}

// AutomationRule auto-assigns a category and tags when the watched field
// contains Pattern as a literal substring. Rules are evaluated in creation
// order and the first match wins. A rule with an empty pattern never
// matches. CategoryName and TagNames are the resolved system names,
// populated on read.
type AutomationRule struct {
	CreatedAt    time.Time
	Trigger      TriggerField
	Pattern      string
	CategoryName string
	TagNames     []string
	ID           int64
	CategoryID   int64
}
