package llm

import (
	"context"
	"strings"

	"github.com/reginabally/task-tracker/internal/common"
	"github.com/reginabally/task-tracker/internal/service"
)

// Placeholders recognized in the stored prompt template.
const (
	// TaskSummaryPlaceholder is replaced with the rendered task report.
	TaskSummaryPlaceholder = "%TASK_SUMMARY%"
	// PreviousFeedbackPlaceholder is replaced with the stored summary of
	// the previous HR feedback.
	PreviousFeedbackPlaceholder = "%SUMMARIZED_PREVIOUS_FEEDBACK%"
)

// previousFeedbackBlock is the template section dropped wholesale when no
// previous feedback has been stored.
const previousFeedbackBlock = "Here is a brief summary of my previous HR feedback, to use as context:\n" +
	PreviousFeedbackPlaceholder + "\n\n"

// DefaultPromptTemplate is used until the user stores their own.
const DefaultPromptTemplate = `I need to write my bi-weekly HR self-feedback. Below is a structured log of the work I did during this reporting period. Summarize it into a short, first-person draft that keeps the category structure and highlights impact.

%TASK_SUMMARY%

Here is a brief summary of my previous HR feedback, to use as context:
%SUMMARIZED_PREVIOUS_FEEDBACK%

`

// BuildPrompt substitutes the rendered report and the optional previous
// feedback into the template. When no previous feedback exists, the
// canonical context block is removed rather than left with a dangling
// placeholder.
func BuildPrompt(template, taskSummary, previousFeedback string) string {
	if template == "" {
		template = DefaultPromptTemplate
	}

	prompt := strings.ReplaceAll(template, TaskSummaryPlaceholder, taskSummary)
	if previousFeedback != "" {
		return strings.ReplaceAll(prompt, PreviousFeedbackPlaceholder, previousFeedback)
	}
	return strings.ReplaceAll(prompt, previousFeedbackBlock, "")
}

// Summarizer produces AI summaries of rendered reports.
type Summarizer struct {
	client *Client
}

// NewSummarizer wraps a chat-completion client.
func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize builds the prompt and requests a completion, retrying with
// backoff on rate limits.
func (s *Summarizer) Summarize(ctx context.Context, template, taskSummary, previousFeedback string) (string, error) {
	prompt := BuildPrompt(template, taskSummary, previousFeedback)

	var summary string
	err := common.WithRetry(ctx, func() error {
		var completeErr error
		summary, completeErr = s.client.Complete(ctx, prompt)
		return completeErr
	}, service.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return "", err
	}

	return summary, nil
}
