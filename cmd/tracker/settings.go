package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/reginabally/task-tracker/internal/cli"
	"github.com/reginabally/task-tracker/internal/llm"
	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage AI summarization settings",
	}

	cmd.AddCommand(settingsShowCmd())
	cmd.AddCommand(settingsSetCmd())

	return cmd
}

func settingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored AI settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			cfg, err := store.GetAIConfig(ctx)
			if err != nil {
				return fmt.Errorf("failed to load AI settings: %w", err)
			}

			endpoint := cfg.Endpoint
			if endpoint == "" {
				endpoint = llm.DefaultEndpoint + " (default)"
			}
			modelName := cfg.Model
			if modelName == "" {
				modelName = llm.DefaultModel + " (default)"
			}
			template := "(default)"
			if cfg.PromptTemplate != "" {
				template = "(custom)"
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Endpoint:\t%s\n", endpoint)
			fmt.Fprintf(w, "Model:\t%s\n", modelName)
			fmt.Fprintf(w, "API key:\t%s\n", maskSecret(cfg.APIKey))
			fmt.Fprintf(w, "Prompt template:\t%s\n", template)
			return w.Flush()
		},
	}
}

func settingsSetCmd() *cobra.Command {
	var (
		endpoint   string
		modelName  string
		apiKey     string
		promptFile string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update AI settings",
		Long: `Update AI settings. Only the given flags change. The prompt template
file may use the placeholders %TASK_SUMMARY% and
%SUMMARIZED_PREVIOUS_FEEDBACK%; an empty --prompt-file restores the
default template.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			cfg, err := store.GetAIConfig(ctx)
			if err != nil {
				return fmt.Errorf("failed to load AI settings: %w", err)
			}

			if cmd.Flags().Changed("endpoint") {
				cfg.Endpoint = strings.TrimSpace(endpoint)
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = strings.TrimSpace(modelName)
			}
			if cmd.Flags().Changed("api-key") {
				cfg.APIKey = apiKey
			}
			if cmd.Flags().Changed("prompt-file") {
				if promptFile == "" {
					cfg.PromptTemplate = ""
				} else {
					content, err := os.ReadFile(promptFile)
					if err != nil {
						return fmt.Errorf("failed to read prompt template: %w", err)
					}
					cfg.PromptTemplate = string(content)
				}
			}

			if err := store.SaveAIConfig(ctx, cfg); err != nil {
				return fmt.Errorf("failed to save AI settings: %w", err)
			}

			fmt.Println(cli.FormatSuccess("AI settings updated"))
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "chat-completion endpoint URL")
	cmd.Flags().StringVar(&modelName, "model", "", "model name")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "bearer token, empty to clear")
	cmd.Flags().StringVar(&promptFile, "prompt-file", "", "file holding the prompt template, empty to reset")

	return cmd
}

func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
