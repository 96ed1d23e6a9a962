package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// GeminiClient generates fallback answers with Google Gemini.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = geminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Provider() string {
	return ProviderGemini
}

func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(userMessage, genai.RoleUser)},
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini API returned no candidates")
	}

	return result.Text(), nil
}
