package drugdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// GenericSummary is the patient summary used when no generator is configured.
const GenericSummary = "This medication is used to treat specific medical conditions. Common side effects may include mild symptoms that usually improve with time. Always follow your doctor's instructions and report any concerning symptoms."

// Summarizer writes a short patient-facing summary of a drug label.
type Summarizer interface {
	Summarize(ctx context.Context, drug string, label *Label) (string, error)
}

// StaticSummarizer always returns GenericSummary.
type StaticSummarizer struct{}

func (StaticSummarizer) Summarize(ctx context.Context, drug string, label *Label) (string, error) {
	return GenericSummary, nil
}

// OpenAISummarizer asks a chat model for the summary.
type OpenAISummarizer struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAISummarizer creates a summarizer for the public OpenAI API.
func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	return NewOpenAISummarizerWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAISummarizerWithConfig creates a summarizer with a custom client
// configuration, e.g. another base URL.
func NewOpenAISummarizerWithConfig(config openai.ClientConfig, model string) *OpenAISummarizer {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAISummarizer{
		client:    openai.NewClientWithConfig(config),
		model:     model,
		maxTokens: 150,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, drug string, label *Label) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize this medication for a patient in two or three plain sentences.\n\nMedication: %s\nIndications: %s\nSide effects: %s",
		drug,
		strings.Join(label.Indications, "; "),
		strings.Join(label.SideEffects, "; "),
	)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a pharmacist writing short, accurate medication summaries for patients.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("while requesting summary for %s: %w", drug, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no summary generated")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
