package llm

const (
	cerebrasAPIURL = "https://api.cerebras.ai/v1/chat/completions"
	cerebrasModel  = "llama-3.3-70b"
)

// NewCerebrasClient returns a chat client for Cerebras, which speaks the
// OpenAI request/response format.
func NewCerebrasClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = cerebrasModel
	}
	c := NewOpenAIClient(apiKey, model).WithURL(cerebrasAPIURL)
	c.provider = ProviderCerebras
	return c
}
