package model

// AIConfig holds the chat-completion settings persisted with the data.
// Empty fields fall back to the summarizer defaults.
type AIConfig struct {
	Endpoint       string
	Model          string
	APIKey         string
	PromptTemplate string
}
