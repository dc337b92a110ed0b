package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/reginabally/task-tracker/internal/common"
	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/service"
)

func TestSQLiteStorage_CreateRule(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rule, err := store.CreateRule(ctx, service.RuleInput{
		Trigger:      model.TriggerLink,
		Pattern:      "github.com",
		CategoryName: "PROJECT",
		TagNames:     []string{"internal-tools"},
	})
	if err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	if rule.ID == 0 {
		t.Error("Expected a non-zero ID")
	}
	if rule.CategoryName != "PROJECT" {
		t.Errorf("CategoryName = %q, want PROJECT", rule.CategoryName)
	}
	if len(rule.TagNames) != 1 || rule.TagNames[0] != "internal-tools" {
		t.Errorf("TagNames = %v, want [internal-tools]", rule.TagNames)
	}
}

func TestSQLiteStorage_CreateRule_unknownCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.CreateRule(context.Background(), service.RuleInput{
		Trigger:      model.TriggerDescription,
		Pattern:      "x",
		CategoryName: "NO_SUCH_CATEGORY",
	})
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_CreateRule_skipsUnknownTags(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rule, err := store.CreateRule(ctx, service.RuleInput{
		Trigger:      model.TriggerDescription,
		Pattern:      "ping",
		CategoryName: "MANUAL_REVIEW_WORK",
		TagNames:     []string{"slack-ping", "no-such-tag"},
	})
	if err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}
	if len(rule.TagNames) != 1 || rule.TagNames[0] != "slack-ping" {
		t.Errorf("TagNames = %v, want unknown names silently dropped", rule.TagNames)
	}
}

func TestSQLiteStorage_CreateRule_invalidTrigger(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.CreateRule(context.Background(), service.RuleInput{
		Trigger:      "title",
		Pattern:      "x",
		CategoryName: "OTHERS",
	})
	if !errors.Is(err, ErrInvalidRule) {
		t.Errorf("Expected ErrInvalidRule, got %v", err)
	}
}

func TestSQLiteStorage_ListRules_creationOrder(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	patterns := []string{"first", "second", "third"}
	for _, p := range patterns {
		if _, err := store.CreateRule(ctx, service.RuleInput{
			Trigger:      model.TriggerDescription,
			Pattern:      p,
			CategoryName: "OTHERS",
		}); err != nil {
			t.Fatalf("Failed to create rule %q: %v", p, err)
		}
	}

	ruleSet, err := store.ListRules(ctx)
	if err != nil {
		t.Fatalf("Failed to list rules: %v", err)
	}
	if len(ruleSet) != 3 {
		t.Fatalf("Got %d rules, want 3", len(ruleSet))
	}
	for i, p := range patterns {
		if ruleSet[i].Pattern != p {
			t.Errorf("ruleSet[%d].Pattern = %q, want %q", i, ruleSet[i].Pattern, p)
		}
	}
}

func TestSQLiteStorage_UpdateRule(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rule, err := store.CreateRule(ctx, service.RuleInput{
		Trigger:      model.TriggerDescription,
		Pattern:      "webinar",
		CategoryName: "LEARNING",
		TagNames:     []string{"webinar"},
	})
	if err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	updated, err := store.UpdateRule(ctx, rule.ID, service.RuleInput{
		Trigger:      model.TriggerLink,
		Pattern:      "zoom.us",
		CategoryName: "COMMUNICATION",
		TagNames:     []string{"team-call"},
	})
	if err != nil {
		t.Fatalf("Failed to update rule: %v", err)
	}

	if updated.Trigger != model.TriggerLink {
		t.Errorf("Trigger = %q, want link", updated.Trigger)
	}
	if updated.CategoryName != "COMMUNICATION" {
		t.Errorf("CategoryName = %q, want COMMUNICATION", updated.CategoryName)
	}
	if len(updated.TagNames) != 1 || updated.TagNames[0] != "team-call" {
		t.Errorf("TagNames = %v, want tag set replaced", updated.TagNames)
	}
}

func TestSQLiteStorage_UpdateRule_notFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.UpdateRule(context.Background(), 9999, service.RuleInput{
		Trigger:      model.TriggerDescription,
		Pattern:      "x",
		CategoryName: "OTHERS",
	})
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStorage_DeleteRule(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rule, err := store.CreateRule(ctx, service.RuleInput{
		Trigger:      model.TriggerDescription,
		Pattern:      "survey",
		CategoryName: "OTHERS",
		TagNames:     []string{"survey"},
	})
	if err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	if err := store.DeleteRule(ctx, rule.ID); err != nil {
		t.Fatalf("Failed to delete rule: %v", err)
	}

	_, err = store.GetRuleByID(ctx, rule.ID)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}
