package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/reginabally/task-tracker/internal/cli"
	"github.com/spf13/cobra"
)

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage task tags",
	}

	cmd.AddCommand(tagsListCmd())
	cmd.AddCommand(tagsAddCmd())
	cmd.AddCommand(tagsUpdateCmd())
	cmd.AddCommand(tagsDeleteCmd())

	return cmd
}

func tagsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags alphabetically",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			tags, err := store.ListTags(ctx)
			if err != nil {
				return fmt.Errorf("failed to list tags: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLABEL")
			for _, tag := range tags {
				fmt.Fprintf(w, "%d\t%s\t%s\n", tag.ID, tag.Name, tag.Label)
			}
			return w.Flush()
		},
	}
}

func tagsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <label>",
		Short: "Create a tag",
		Long: `Create a tag from a display label. The system name is derived from the
label (lowercased, spaces to hyphens).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			tag, err := store.CreateTag(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created tag %s (#%d)", tag.Name, tag.ID)))
			return nil
		},
	}
}

func tagsUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <label>",
		Short: "Rename a tag",
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

			tag, err := store.UpdateTag(ctx, id, args[1])
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Renamed tag #%d to %s", tag.ID, tag.Label)))
			return nil
		},
	}
}

func tagsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an unused tag",
		Long:  `Delete a tag. Fails while any task or automation rule still references it.`,
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

			if err := store.DeleteTag(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted tag #%d", id)))
			return nil
		},
	}
}
