package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/reginabally/task-tracker/internal/common"
	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/service"
)

// ListRules returns all automation rules in creation order, the order they
// are evaluated in.
func (s *SQLiteStorage) ListRules(ctx context.Context) ([]model.AutomationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listRules(ctx, s.db)
}

func (s *SQLiteStorage) listRules(ctx context.Context, q dbtx) ([]model.AutomationRule, error) {
	query := `
		SELECT r.id, r.trigger_field, r.pattern, r.category_id, r.created_at, c.name
		FROM automation_rules r
		JOIN categories c ON c.id = r.category_id
		ORDER BY r.created_at ASC, r.id ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.AutomationRule
	for rows.Next() {
		var rule model.AutomationRule
		if err := rows.Scan(&rule.ID, &rule.Trigger, &rule.Pattern, &rule.CategoryID, &rule.CreatedAt, &rule.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	for i := range rules {
		tagNames, err := s.loadRuleTags(ctx, q, rules[i].ID)
		if err != nil {
			return nil, err
		}
		rules[i].TagNames = tagNames
	}

	slog.Debug("retrieved automation rules", "count", len(rules))
	return rules, nil
}

// GetRuleByID returns a single automation rule with names resolved.
func (s *SQLiteStorage) GetRuleByID(ctx context.Context, id int64) (*model.AutomationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getRuleByID(ctx, s.db, id)
}

func (s *SQLiteStorage) getRuleByID(ctx context.Context, q dbtx, id int64) (*model.AutomationRule, error) {
	query := `
		SELECT r.id, r.trigger_field, r.pattern, r.category_id, r.created_at, c.name
		FROM automation_rules r
		JOIN categories c ON c.id = r.category_id
		WHERE r.id = ?`

	var rule model.AutomationRule
	err := q.QueryRowContext(ctx, query, id).Scan(
		&rule.ID, &rule.Trigger, &rule.Pattern, &rule.CategoryID, &rule.CreatedAt, &rule.CategoryName,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rule: %w", err)
	}

	tagNames, err := s.loadRuleTags(ctx, q, id)
	if err != nil {
		return nil, err
	}
	rule.TagNames = tagNames

	return &rule, nil
}

// CreateRule creates an automation rule from a name-resolved input. The
// category must exist; unknown tag names are skipped.
func (s *SQLiteStorage) CreateRule(ctx context.Context, input service.RuleInput) (*model.AutomationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}
	return s.createRule(ctx, s.db, input)
}

func (s *SQLiteStorage) createRule(ctx context.Context, q dbtx, input service.RuleInput) (*model.AutomationRule, error) {
	category, err := s.getCategoryByName(ctx, q, input.CategoryName)
	if err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO automation_rules (trigger_field, pattern, category_id) VALUES (?, ?, ?)`,
		string(input.Trigger), input.Pattern, category.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get rule ID: %w", err)
	}

	if err := s.attachRuleTags(ctx, q, id, input.TagNames); err != nil {
		return nil, err
	}

	slog.Info("created automation rule", "id", id, "trigger", input.Trigger, "pattern", input.Pattern)
	return s.getRuleByID(ctx, q, id)
}

// UpdateRule rewrites a rule and replaces its tag associations.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, id int64, input service.RuleInput) (*model.AutomationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateRuleInput(input); err != nil {
		return nil, err
	}
	return s.updateRule(ctx, s.db, id, input)
}

func (s *SQLiteStorage) updateRule(ctx context.Context, q dbtx, id int64, input service.RuleInput) (*model.AutomationRule, error) {
	category, err := s.getCategoryByName(ctx, q, input.CategoryName)
	if err != nil {
		return nil, err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE automation_rules SET trigger_field = ?, pattern = ?, category_id = ? WHERE id = ?`,
		string(input.Trigger), input.Pattern, category.ID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM automation_rule_tags WHERE rule_id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to clear rule tags: %w", err)
	}
	if err := s.attachRuleTags(ctx, q, id, input.TagNames); err != nil {
		return nil, err
	}

	return s.getRuleByID(ctx, q, id)
}

// DeleteRule removes an automation rule and its tag associations.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.deleteRule(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteRule(ctx context.Context, q dbtx, id int64) error {
	result, err := q.ExecContext(ctx, `DELETE FROM automation_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %d: %w", id, common.ErrNotFound)
	}

	slog.Info("deleted automation rule", "id", id)
	return nil
}

// attachRuleTags links existing tags to a rule. Names that resolve to no
// tag are skipped rather than rejected.
func (s *SQLiteStorage) attachRuleTags(ctx context.Context, q dbtx, ruleID int64, tagNames []string) error {
	for _, name := range tagNames {
		var tagID int64
		err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
		if err == sql.ErrNoRows {
			slog.Debug("skipping unknown tag on rule", "rule_id", ruleID, "tag", name)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}

		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO automation_rule_tags (rule_id, tag_id) VALUES (?, ?)`,
			ruleID, tagID,
		); err != nil {
			return fmt.Errorf("failed to attach tag %q: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStorage) loadRuleTags(ctx context.Context, q dbtx, ruleID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT tg.name
		FROM automation_rule_tags rt
		JOIN tags tg ON tg.id = rt.tag_id
		WHERE rt.rule_id = ?
		ORDER BY tg.name ASC`,
		ruleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan rule tag: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule tags: %w", err)
	}

	return names, nil
}
