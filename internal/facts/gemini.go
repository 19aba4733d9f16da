package facts

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider talks to the Gemini API through the Google GenAI SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a provider for the Gemini API. An empty model
// selects the default.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// SuggestSubject asks for one animal name, avoiding past subjects.
func (p *GeminiProvider) SuggestSubject(ctx context.Context, avoid []string) (string, error) {
	answer, err := p.generate(ctx, suggestPrompt(avoid), 30, 1.0)
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
func (p *GeminiProvider) Describe(ctx context.Context, subject string) (string, error) {
	narration, err := p.generate(ctx, describePrompt(subject), 600, 0.7)
	if err != nil {
		return "", fmt.Errorf("description of %q failed: %w", subject, err)
	}
	if narration == "" {
		return "", fmt.Errorf("description of %q returned no text", subject)
	}
	return narration, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string, maxTokens int32, temperature float32) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}
