package main

import (
	"fmt"

	"github.com/reginabally/task-tracker/internal/cli"
	"github.com/reginabally/task-tracker/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply pending database migrations. Every command migrates on startup;
this exists to initialize or upgrade a database explicitly, e.g. after
restoring a backup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}
}
