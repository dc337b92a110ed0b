// Package rules implements the automation rule engine that proposes a
// category and tag set from task form input. It is the single shared
// implementation; every caller applies rules through it.
package rules

import (
	"strings"

	"github.com/reginabally/task-tracker/internal/model"
)

// Selection is the category and tag choice a rule application starts from
// and returns. Values are system names.
type Selection struct {
	Category string
	Tags     []string
}

// Apply evaluates rules in stored order against a single field change and
// returns the updated selection. A rule is considered when its trigger
// matches the changed field, its pattern is non-empty, and the pattern is a
// case-sensitive literal substring of the value. The first matching rule
// wins: its category overwrites the current one and its tags are unioned
// into the current set, then evaluation stops. Tags already selected are
// never removed, so a later edit that matches a different rule only ever
// adds tags.
func Apply(ruleSet []model.AutomationRule, field model.TriggerField, value string, sel Selection) Selection {
	out := Selection{
		Category: sel.Category,
		Tags:     append([]string(nil), sel.Tags...),
	}

	for _, rule := range ruleSet {
		if rule.Trigger != field {
			continue
		}
		if rule.Pattern == "" || !strings.Contains(value, rule.Pattern) {
			continue
		}

		out.Category = rule.CategoryName
		out.Tags = unionTags(out.Tags, rule.TagNames)
		break
	}

	return out
}

// unionTags appends the rule tags not already present, preserving the
// existing order.
func unionTags(existing, added []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, tag := range existing {
		seen[tag] = true
	}
	for _, tag := range added {
		if !seen[tag] {
			existing = append(existing, tag)
			seen[tag] = true
		}
	}
	return existing
}
