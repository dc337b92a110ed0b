package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					label TEXT NOT NULL UNIQUE,
					sort_order INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS tags (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT NOT NULL UNIQUE,
					label TEXT NOT NULL UNIQUE,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS tasks (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					description TEXT,
					category_id INTEGER REFERENCES categories(id),
					date DATETIME NOT NULL,
					link TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_tasks_date ON tasks(date)`,
				`CREATE INDEX idx_tasks_category ON tasks(category_id)`,

				`CREATE TABLE IF NOT EXISTS task_tags (
					task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
					tag_id INTEGER NOT NULL REFERENCES tags(id),
					PRIMARY KEY (task_id, tag_id)
				)`,

				`CREATE TABLE IF NOT EXISTS automation_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					trigger_field TEXT NOT NULL,
					pattern TEXT NOT NULL DEFAULT '',
					category_id INTEGER NOT NULL REFERENCES categories(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS automation_rule_tags (
					rule_id INTEGER NOT NULL REFERENCES automation_rules(id) ON DELETE CASCADE,
					tag_id INTEGER NOT NULL REFERENCES tags(id),
					PRIMARY KEY (rule_id, tag_id)
				)`,

				`CREATE TABLE IF NOT EXISTS reporting_period (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					period_start DATETIME NOT NULL,
					next_start_date DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS settings (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default categories and tags",
		Up: func(tx *sql.Tx) error {
			categories := []struct {
				name  string
				label string
			}{
				{"MANUAL_REVIEW_WORK", "Manual Review Work"},
				{"SQUAD", "Compliance Squad Work"},
				{"COMMUNICATION", "Communication"},
				{"PROJECT", "Project"},
				{"LEARNING", "Learning"},
				{"DOCUMENTATION", "Documentation"},
				{"OTHERS", "Others"},
			}
			for i, cat := range categories {
				if _, err := tx.Exec(
					`INSERT OR IGNORE INTO categories (name, label, sort_order) VALUES (?, ?, ?)`,
					cat.name, cat.label, i,
				); err != nil {
					return fmt.Errorf("failed to seed category %s: %w", cat.name, err)
				}
			}

			tags := []struct {
				name  string
				label string
			}{
				{"slack-ping", "Slack Ping"},
				{"ticket", "Ticket"},
				{"gut-check", "Gut Check"},
				{"p2-post", "P2 Post"},
				{"p2-discussion", "P2 Discussion"},
				{"slack-discussion", "Slack Discussion"},
				{"team-call", "Team Call"},
				{"1-1", "1:1"},
				{"internal-tools", "Internal Tools"},
				{"workflow-improvement", "Workflow Improvement"},
				{"buddying", "Buddying"},
				{"tool-exploration", "Tool Exploration"},
				{"deep-dive", "Deep Dive"},
				{"shared-insight", "Shared Insight"},
				{"fraud-pattern", "Fraud Pattern"},
				{"webinar", "Webinar"},
				{"e-learning", "e-Learning"},
				{"coaching", "Coaching"},
				{"reading", "Reading"},
				{"fu-update", "Fraudsquad University Update"},
				{"survey", "Survey"},
				{"admin", "Admin Tasks"},
				{"hr-feedback", "HR Feedback"},
				{"ai", "AI"},
				{"data-analysis", "Data Analysis"},
				{"meetup", "Meetup"},
				{"event", "Event"},
				{"other", "Other"},
			}
			for _, tag := range tags {
				if _, err := tx.Exec(
					`INSERT OR IGNORE INTO tags (name, label) VALUES (?, ?)`,
					tag.name, tag.label,
				); err != nil {
					return fmt.Errorf("failed to seed tag %s: %w", tag.name, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
