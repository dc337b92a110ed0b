package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/reginabally/task-tracker/internal/model"
)

// Setting keys. The settings table is reached only through the typed
// accessors below; callers never see raw keys.
const (
	settingAIEndpoint       = "ai.endpoint"
	settingAIModel          = "ai.model"
	settingAIAPIKey         = "ai.api_key"
	settingAIPrompt         = "ai.prompt_template"
	settingPreviousFeedback = "feedback.previous_summary"
)

// GetAIConfig returns the persisted chat-completion settings. Missing keys
// come back as empty fields for the summarizer defaults to fill.
func (s *SQLiteStorage) GetAIConfig(ctx context.Context) (*model.AIConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAIConfig(ctx, s.db)
}

func (s *SQLiteStorage) getAIConfig(ctx context.Context, q dbtx) (*model.AIConfig, error) {
	cfg := &model.AIConfig{}
	fields := []struct {
		dest *string
		key  string
	}{
		{&cfg.Endpoint, settingAIEndpoint},
		{&cfg.Model, settingAIModel},
		{&cfg.APIKey, settingAIAPIKey},
		{&cfg.PromptTemplate, settingAIPrompt},
	}
	for _, f := range fields {
		value, err := s.getSetting(ctx, q, f.key)
		if err != nil {
			return nil, err
		}
		*f.dest = value
	}
	return cfg, nil
}

// SaveAIConfig persists the chat-completion settings.
func (s *SQLiteStorage) SaveAIConfig(ctx context.Context, cfg *model.AIConfig) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if cfg == nil {
		return fmt.Errorf("%w: cfg", ErrNilParameter)
	}
	return s.saveAIConfig(ctx, s.db, cfg)
}

func (s *SQLiteStorage) saveAIConfig(ctx context.Context, q dbtx, cfg *model.AIConfig) error {
	fields := []struct {
		key   string
		value string
	}{
		{settingAIEndpoint, cfg.Endpoint},
		{settingAIModel, cfg.Model},
		{settingAIAPIKey, cfg.APIKey},
		{settingAIPrompt, cfg.PromptTemplate},
	}
	for _, f := range fields {
		if err := s.setSetting(ctx, q, f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

// GetPreviousFeedback returns the stored summary of the previous HR
// feedback, or empty when none has been saved.
func (s *SQLiteStorage) GetPreviousFeedback(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	return s.getSetting(ctx, s.db, settingPreviousFeedback)
}

// SavePreviousFeedback stores the summary used as context for the next
// AI summarization.
func (s *SQLiteStorage) SavePreviousFeedback(ctx context.Context, text string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.setSetting(ctx, s.db, settingPreviousFeedback, text)
}

func (s *SQLiteStorage) getSetting(ctx context.Context, q dbtx, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStorage) setSetting(ctx context.Context, q dbtx, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}
