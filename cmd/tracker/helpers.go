package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/reginabally/task-tracker/internal/common"
	"github.com/reginabally/task-tracker/internal/config"
	"github.com/reginabally/task-tracker/internal/service"
	"github.com/reginabally/task-tracker/internal/storage"
	"github.com/spf13/viper"
)

const dateLayout = "2006-01-02"

// initStorage opens the configured SQLite database and brings the schema up
// to date. Callers own the returned storage and must Close it.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "tracker", "tracker.db")
	}
	dbPath = config.ExpandPath(dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError("failed to open database at "+dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		closeStorage(store)
		return nil, common.NewUserError("failed to migrate database", err)
	}

	return store, nil
}

func closeStorage(store service.Storage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "failed to close storage", nil)
	}
}

// parseID parses a positional numeric ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q: expected a positive number", arg)
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD flag value in the local time zone.
func parseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}
