package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/reginabally/task-tracker/internal/cli"
	"github.com/reginabally/task-tracker/internal/model"
	"github.com/reginabally/task-tracker/internal/service"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage automation rules",
		Long: `Manage automation rules. Rules run in creation order when a task's
description or link is edited; the first rule whose pattern is a
substring of the field assigns its category and adds its tags.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesUpdateCmd())
	cmd.AddCommand(rulesDeleteCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			ruleSet, err := store.ListRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTRIGGER\tPATTERN\tCATEGORY\tTAGS")
			for _, rule := range ruleSet {
				tags := "-"
				if len(rule.TagNames) > 0 {
					tags = strings.Join(rule.TagNames, ", ")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", rule.ID, rule.Trigger, rule.Pattern, rule.CategoryName, tags)
			}
			return w.Flush()
		},
	}
}

func rulesAddCmd() *cobra.Command {
	var (
		trigger  string
		pattern  string
		category string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an automation rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			rule, err := store.CreateRule(ctx, service.RuleInput{
				Trigger:      model.TriggerField(trigger),
				Pattern:      pattern,
				CategoryName: category,
				TagNames:     tags,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created rule #%d: %s contains %q -> %s",
				rule.ID, rule.Trigger, rule.Pattern, rule.CategoryName)))
			return nil
		},
	}

	cmd.Flags().StringVar(&trigger, "trigger", string(model.TriggerDescription), "field to watch (description, link)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "literal substring to match (case-sensitive)")
	cmd.Flags().StringVar(&category, "category", "", "category system name to assign")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag system name to add (repeatable)")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func rulesUpdateCmd() *cobra.Command {
	var (
		trigger  string
		pattern  string
		category string
		tags     []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an automation rule",
		Long: `Replace an automation rule's trigger, pattern, category and tag set.
The rule keeps its position in the evaluation order.`,
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

			rule, err := store.UpdateRule(ctx, id, service.RuleInput{
				Trigger:      model.TriggerField(trigger),
				Pattern:      pattern,
				CategoryName: category,
				TagNames:     tags,
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated rule #%d", rule.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&trigger, "trigger", string(model.TriggerDescription), "field to watch (description, link)")
	cmd.Flags().StringVar(&pattern, "pattern", "", "literal substring to match (case-sensitive)")
	cmd.Flags().StringVar(&category, "category", "", "category system name to assign")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag system name to add (repeatable)")
	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an automation rule",
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

			if err := store.DeleteRule(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted rule #%d", id)))
			return nil
		},
	}
}
