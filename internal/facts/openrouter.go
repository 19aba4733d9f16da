package facts

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel = "google/gemma-3n-e4b-it:free"
)

// OpenRouterProvider talks to OpenRouter's OpenAI-compatible chat
// completion endpoint.
type OpenRouterProvider struct {
	client *openai.Client
	model  string
}

// NewOpenRouterProvider creates a provider using the given API key and
// model. An empty model selects the default.
func NewOpenRouterProvider(apiKey, model string) *OpenRouterProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL

	if model == "" {
		model = defaultOpenRouterModel
	}

	return &OpenRouterProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// SuggestSubject asks for one animal name, avoiding past subjects.
func (p *OpenRouterProvider) SuggestSubject(ctx context.Context, avoid []string) (string, error) {
	answer, err := p.complete(ctx, suggestPrompt(avoid), 30, 1.0)
	if err != nil {
		return "", fmt.Errorf("subject suggestion failed: %w", err)
	}

	subject := cleanSubject(answer)
	if subject == "" {
		return "", fmt.Errorf("subject suggestion returned empty name")
	}
	return subject, nil
}

// Describe returns a single-paragraph narration for the subject.
func (p *OpenRouterProvider) Describe(ctx context.Context, subject string) (string, error) {
	narration, err := p.complete(ctx, describePrompt(subject), 600, 0.7)
	if err != nil {
		return "", fmt.Errorf("description of %q failed: %w", subject, err)
	}
	if narration == "" {
		return "", fmt.Errorf("description of %q returned no text", subject)
	}
	return narration, nil
}

// Name returns the provider name.
func (p *OpenRouterProvider) Name() string {
	return "openrouter"
}

func (p *OpenRouterProvider) complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenRouter API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
