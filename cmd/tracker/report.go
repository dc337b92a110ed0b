package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/reginabally/task-tracker/internal/cli"
	"github.com/reginabally/task-tracker/internal/llm"
	"github.com/reginabally/task-tracker/internal/period"
	"github.com/reginabally/task-tracker/internal/report"
	"github.com/reginabally/task-tracker/internal/service"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate bi-weekly self-feedback reports",
	}

	cmd.AddCommand(reportGenerateCmd())
	cmd.AddCommand(reportSummarizeCmd())

	return cmd
}

func reportGenerateCmd() *cobra.Command {
	var (
		format   string
		startStr string
		endStr   string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the report for the current period",
		Long: `Render the tasks of the reporting window grouped by category, ordered
by the configured category order. Defaults to the current period;
--start and --end override the window.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			rendered, _, err := renderReport(ctx, store, format, startStr, endStr)
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(rendered), 0o644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Println(cli.FormatSuccess("Report written to " + output))
				return nil
			}

			fmt.Print(rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "output format (markdown, html)")
	cmd.Flags().StringVar(&startStr, "start", "", "window start as YYYY-MM-DD (default: current period)")
	cmd.Flags().StringVar(&endStr, "end", "", "window end as YYYY-MM-DD (default: current period)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func reportSummarizeCmd() *cobra.Command {
	var (
		startStr     string
		endStr       string
		saveFeedback bool
	)

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Draft the self-feedback with the configured AI endpoint",
		Long: `Render the period report and send it to the configured
chat-completion endpoint, together with the stored summary of the
previous feedback when one exists. With --save the result is stored as
the previous-feedback context for the next period.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			rendered, window, err := renderReport(ctx, store, "markdown", startStr, endStr)
			if err != nil {
				return err
			}

			aiConfig, err := store.GetAIConfig(ctx)
			if err != nil {
				return fmt.Errorf("failed to load AI settings: %w", err)
			}
			previousFeedback, err := store.GetPreviousFeedback(ctx)
			if err != nil {
				return fmt.Errorf("failed to load previous feedback: %w", err)
			}

			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("Summarizing %s to %s...",
				window.Start.Format(dateLayout), window.End.Format(dateLayout))))

			summarizer := llm.NewSummarizer(llm.NewClient(aiConfig))
			summary, err := summarizer.Summarize(ctx, aiConfig.PromptTemplate, rendered, previousFeedback)
			if err != nil {
				return fmt.Errorf("summarization failed: %w", err)
			}

			fmt.Println(summary)

			if saveFeedback {
				if err := store.SavePreviousFeedback(ctx, summary); err != nil {
					return fmt.Errorf("failed to save feedback summary: %w", err)
				}
				fmt.Println(cli.FormatSuccess("Saved as previous-feedback context"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startStr, "start", "", "window start as YYYY-MM-DD (default: current period)")
	cmd.Flags().StringVar(&endStr, "end", "", "window end as YYYY-MM-DD (default: current period)")
	cmd.Flags().BoolVar(&saveFeedback, "save", false, "store the summary as context for the next period")

	return cmd
}

// renderReport resolves the report window, loads its tasks and renders them
// in the requested format.
func renderReport(ctx context.Context, store service.Storage, format, startStr, endStr string) (string, period.Window, error) {
	window, err := resolveWindow(ctx, store, startStr, endStr)
	if err != nil {
		return "", period.Window{}, err
	}

	tasks, err := store.ListTasks(ctx, service.TaskFilter{Start: &window.Start, End: &window.End})
	if err != nil {
		return "", period.Window{}, fmt.Errorf("failed to load tasks: %w", err)
	}
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return "", period.Window{}, fmt.Errorf("failed to load categories: %w", err)
	}

	switch format {
	case "markdown":
		return report.RenderMarkdown(tasks, categories), window, nil
	case "html":
		return report.RenderHTML(tasks, categories), window, nil
	default:
		return "", period.Window{}, fmt.Errorf("invalid format %q: expected markdown or html", format)
	}
}

// resolveWindow returns the explicit window when both bounds are given,
// otherwise the current reporting period. A single bound is an error.
func resolveWindow(ctx context.Context, store service.Storage, startStr, endStr string) (period.Window, error) {
	if startStr == "" && endStr == "" {
		return period.NewManager(store).Current(ctx, time.Now())
	}
	if startStr == "" || endStr == "" {
		return period.Window{}, fmt.Errorf("--start and --end must be given together")
	}

	start, err := parseDate(startStr)
	if err != nil {
		return period.Window{}, err
	}
	end, err := parseDate(endStr)
	if err != nil {
		return period.Window{}, err
	}
	if end.Before(start) {
		return period.Window{}, fmt.Errorf("--end must not be before --start")
	}

	return period.Window{Start: start, End: end}, nil
}
