package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/reginabally/task-tracker/internal/cli"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage task categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesUpdateCmd())
	cmd.AddCommand(categoriesDeleteCmd())
	cmd.AddCommand(categoriesReorderCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories in report order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			categories, err := store.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tORDER\tNAME\tLABEL")
			for _, cat := range categories {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", cat.ID, cat.SortOrder, cat.Name, cat.Label)
			}
			return w.Flush()
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <label>",
		Short: "Create a category",
		Long: `Create a category from a display label. The system name is derived
from the label (uppercased, spaces to underscores) and the category is
appended to the end of the report order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			cat, err := store.CreateCategory(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %s (#%d)", cat.Name, cat.ID)))
			return nil
		},
	}
}

func categoriesUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <label>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			cat, err := store.UpdateCategory(ctx, id, args[1])
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Renamed category #%d to %s", cat.ID, cat.Label)))
			return nil
		},
	}
}

func categoriesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an unused category",
		Long:  `Delete a category. Fails while any task or automation rule still references it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.DeleteCategory(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted category #%d", id)))
			return nil
		},
	}
}

func categoriesReorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <id> <position>",
		Short: "Move a category in the report order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			position, err := strconv.Atoi(args[1])
			if err != nil || position < 0 {
				return fmt.Errorf("invalid position %q: expected a non-negative number", args[1])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.SetCategorySortOrder(ctx, id, position); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Moved category #%d to position %d", id, position)))
			return nil
		},
	}
}
