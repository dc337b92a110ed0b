package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/reginabally/task-tracker/internal/cli"
	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/period"
	"github.com/reginabally/task-tracker/internal/rules"
	"github.com/reginabally/task-tracker/internal/service"
	"github.com/spf13/cobra"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Log and browse work items",
	}

	cmd.AddCommand(tasksAddCmd())
	cmd.AddCommand(tasksListCmd())
	cmd.AddCommand(tasksShowCmd())
	cmd.AddCommand(tasksUpdateCmd())
	cmd.AddCommand(tasksDeleteCmd())

	return cmd
}

func tasksAddCmd() *cobra.Command {
	var (
		description string
		dateStr     string
		link        string
		category    string
		tags        []string
		noRules     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Log a new task",
		Long: `Log a new task. Unless --no-rules is given, automation rules run
against the description and the link and may assign a category and
additional tags on top of the ones provided.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			date := time.Now()
			if dateStr != "" {
				if date, err = parseDate(dateStr); err != nil {
					return err
				}
			}

			sel := rules.Selection{Category: category, Tags: tags}
			if !noRules {
				if sel, err = applyRules(ctx, store, sel, description, link); err != nil {
					return err
				}
			}

			task := &model.Task{
				Date:        date,
				Description: strings.TrimSpace(description),
				Link:        strings.TrimSpace(link),
			}
			if task.CategoryID, err = resolveCategory(ctx, store, sel.Category); err != nil {
				return err
			}

			detail, err := store.CreateTask(ctx, task, sel.Tags)
			if err != nil {
				return fmt.Errorf("failed to create task: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Logged task #%d", detail.ID)))
			printTaskDetail(detail)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "m", "", "what was done")
	cmd.Flags().StringVar(&dateStr, "date", "", "task date as YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&link, "link", "", "reference URL")
	cmd.Flags().StringVar(&category, "category", "", "category system name (e.g. CODE_REVIEW)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag system name (repeatable)")
	cmd.Flags().BoolVar(&noRules, "no-rules", false, "skip automation rules")

	return cmd
}

func tasksListCmd() *cobra.Command {
	var (
		category  string
		tag       string
		startStr  string
		endStr    string
		usePeriod bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			filter := service.TaskFilter{Category: category, Tag: tag}
			switch {
			case usePeriod:
				if startStr != "" || endStr != "" {
					return fmt.Errorf("--period cannot be combined with --start or --end")
				}
				window, err := period.NewManager(store).Current(ctx, time.Now())
				if err != nil {
					return err
				}
				filter.Start, filter.End = &window.Start, &window.End
			default:
				if filter.Start, err = parseDateFlag(startStr); err != nil {
					return err
				}
				if filter.End, err = parseDateFlag(endStr); err != nil {
					return err
				}
			}

			tasks, err := store.ListTasks(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list tasks: %w", err)
			}

			if len(tasks) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No tasks found."))
				return nil
			}

			printTaskTable(tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category system name")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag system name")
	cmd.Flags().StringVar(&startStr, "start", "", "earliest task date as YYYY-MM-DD")
	cmd.Flags().StringVar(&endStr, "end", "", "latest task date as YYYY-MM-DD")
	cmd.Flags().BoolVar(&usePeriod, "period", false, "limit to the current reporting period")

	return cmd
}

func tasksShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single task",
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

			detail, err := store.GetTaskByID(ctx, id)
			if err != nil {
				return err
			}

			printTaskDetail(detail)
			return nil
		},
	}
}

func tasksUpdateCmd() *cobra.Command {
	var (
		description string
		dateStr     string
		link        string
		category    string
		tags        []string
		noRules     bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task",
		Long: `Update a task. Only the given flags change; automation rules re-run
against the description or the link when that field is edited, unless
--no-rules is given. An empty --category clears the category.`,
		Args: cobra.ExactArgs(1),
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

			existing, err := store.GetTaskByID(ctx, id)
			if err != nil {
				return err
			}

			task := existing.Task
			if cmd.Flags().Changed("description") {
				task.Description = strings.TrimSpace(description)
			}
			if cmd.Flags().Changed("link") {
				task.Link = strings.TrimSpace(link)
			}
			if cmd.Flags().Changed("date") {
				if task.Date, err = parseDate(dateStr); err != nil {
					return err
				}
			}

			sel := rules.Selection{Category: categoryName(existing.Category)}
			if cmd.Flags().Changed("category") {
				sel.Category = strings.TrimSpace(category)
			}
			if cmd.Flags().Changed("tag") {
				sel.Tags = tags
			} else {
				for _, t := range existing.Tags {
					sel.Tags = append(sel.Tags, t.Name)
				}
			}

			if !noRules {
				var descEdit, linkEdit string
				if cmd.Flags().Changed("description") {
					descEdit = task.Description
				}
				if cmd.Flags().Changed("link") {
					linkEdit = task.Link
				}
				if sel, err = applyRules(ctx, store, sel, descEdit, linkEdit); err != nil {
					return err
				}
			}

			if task.CategoryID, err = resolveCategory(ctx, store, sel.Category); err != nil {
				return err
			}

			detail, err := store.UpdateTask(ctx, &task, sel.Tags)
			if err != nil {
				return fmt.Errorf("failed to update task: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated task #%d", detail.ID)))
			printTaskDetail(detail)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "m", "", "what was done")
	cmd.Flags().StringVar(&dateStr, "date", "", "task date as YYYY-MM-DD")
	cmd.Flags().StringVar(&link, "link", "", "reference URL")
	cmd.Flags().StringVar(&category, "category", "", "category system name, empty to clear")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "replacement tag set (repeatable)")
	cmd.Flags().BoolVar(&noRules, "no-rules", false, "skip automation rules")

	return cmd
}

func tasksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
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

			if err := store.DeleteTask(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted task #%d", id)))
			return nil
		},
	}
}

// applyRules runs the stored automation rules against whichever of the two
// fields are non-empty, description first.
func applyRules(ctx context.Context, store service.Storage, sel rules.Selection, description, link string) (rules.Selection, error) {
	ruleSet, err := store.ListRules(ctx)
	if err != nil {
		return sel, fmt.Errorf("failed to load automation rules: %w", err)
	}

	if description != "" {
		sel = rules.Apply(ruleSet, model.TriggerDescription, description, sel)
	}
	if link != "" {
		sel = rules.Apply(ruleSet, model.TriggerLink, link, sel)
	}
	return sel, nil
}

// resolveCategory maps a category system name to its ID; empty means
// uncategorized.
func resolveCategory(ctx context.Context, store service.Storage, name string) (int64, error) {
	if name == "" {
		return 0, nil
	}
	cat, err := store.GetCategoryByName(ctx, name)
	if err != nil {
		return 0, err
	}
	return cat.ID, nil
}

func categoryName(cat *model.Category) string {
	if cat == nil {
		return ""
	}
	return cat.Name
}

func categoryLabel(cat *model.Category) string {
	if cat == nil {
		return "-"
	}
	return cat.Label
}

func tagNames(tags []model.Tag) string {
	if len(tags) == 0 {
		return "-"
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func printTaskTable(tasks []model.TaskDetail) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCATEGORY\tDESCRIPTION\tTAGS")
	for i := range tasks {
		task := &tasks[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.Date.Format(dateLayout),
			categoryLabel(task.Category),
			task.Description,
			tagNames(task.Tags),
		)
	}
	_ = w.Flush()

	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%d task(s)", len(tasks))))
}

func printTaskDetail(task *model.TaskDetail) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%d\n", task.ID)
	fmt.Fprintf(w, "Date:\t%s\n", task.Date.Format(dateLayout))
	fmt.Fprintf(w, "Description:\t%s\n", task.Description)
	if task.Link != "" {
		fmt.Fprintf(w, "Link:\t%s\n", task.Link)
	}
	fmt.Fprintf(w, "Category:\t%s\n", categoryLabel(task.Category))
	fmt.Fprintf(w, "Tags:\t%s\n", tagNames(task.Tags))
	_ = w.Flush()
}

// parseDateFlag parses an optional date flag into a filter bound.
func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
