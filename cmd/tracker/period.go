package main

import (
	"fmt"
	"time"

	"github.com/reginabally/task-tracker/internal/cli"
	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/period"
	"github.com/spf13/cobra"
)

func periodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Inspect and override the bi-weekly reporting period",
	}

	cmd.AddCommand(periodShowCmd())
	cmd.AddCommand(periodSetCmd())

	return cmd
}

func periodShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current reporting window",
		Long: `Show the current reporting window. On first use the period is anchored
to the most recent Friday; when the window has lapsed it rolls forward
before being shown.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			window, err := period.NewManager(store).Current(ctx, time.Now())
			if err != nil {
				return err
			}

			printWindow(window)
			return nil
		},
	}
}

func periodSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <start-date>",
		Short: "Re-anchor the reporting period",
		Long: `Re-anchor the reporting period to the given YYYY-MM-DD start date.
Subsequent 14-day rollovers proceed from the new anchor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			start, err := parseDate(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			window, err := period.NewManager(store).Set(ctx, start)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Reporting period re-anchored"))
			printWindow(window)
			return nil
		},
	}
}

func printWindow(window period.Window) {
	fmt.Println(cli.FormatTitle("Reporting period"))
	fmt.Printf("Start: %s\n", window.Start.Format(dateLayout))
	fmt.Printf("End:   %s\n", window.End.Format(dateLayout))
	fmt.Printf("Next:  %s\n", window.Start.AddDate(0, 0, model.PeriodDays).Format(dateLayout))
}
