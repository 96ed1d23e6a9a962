package llm

import (
	"context"
	"sync"
)

const mockResponse = "Mock answer"

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what Generate returns.
type MockClient struct {
	GenerateResponse string
	GenerateError    error

	// Call tracking for assertions
	mu            sync.Mutex
	GenerateCalls []struct{ System, User string }
}

func NewMockClient() *MockClient {
	return &MockClient{GenerateResponse: mockResponse}
}

func (c *MockClient) Provider() string {
	return ProviderMock
}

func (c *MockClient) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	c.mu.Lock()
	c.GenerateCalls = append(c.GenerateCalls, struct{ System, User string }{systemPrompt, userMessage})
	c.mu.Unlock()
	if c.GenerateError != nil {
		return "", c.GenerateError
	}
	return c.GenerateResponse, nil
}

// CallCount returns how many times Generate was invoked.
func (c *MockClient) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.GenerateCalls)
}

// Reset clears all recorded calls and resets responses to defaults.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GenerateResponse = mockResponse
	c.GenerateError = nil
	c.GenerateCalls = nil
}
