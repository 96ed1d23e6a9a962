package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Paris.\n"}},{"message":{"content":"ignored"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "").WithURL(srv.URL)
	reply, err := c.Generate(context.Background(), "You are a helpful assistant.", "capital of france")
	require.NoError(t, err)

	assert.Equal(t, "  Paris.\n", reply, "first reply is returned verbatim")
	assert.Equal(t, chatModel, got.Model)
	assert.Equal(t, []chatMessage{
		{Role: "system", Content: "You are a helpful assistant."},
		{Role: "user", Content: "capital of france"},
	}, got.Messages)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"status", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, "status 429"},
		{"api error", http.StatusOK, `{"error":{"message":"bad key"}}`, "chat API error: bad key"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"garbage", http.StatusOK, `not json`, "unmarshal chat response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAIClient("k", "m").WithURL(srv.URL).Generate(context.Background(), "s", "u")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCerebrasClient_UsesOpenAIFormat(t *testing.T) {
	c := NewCerebrasClient("key", "")

	assert.Equal(t, ProviderCerebras, c.Provider())
	assert.Equal(t, cerebrasAPIURL, c.url)
	assert.Equal(t, cerebrasModel, c.model)
}

func TestAnthropicClient_Generate(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ak", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Hello there"}]}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("ak", "")
	c.url = srv.URL

	reply, err := c.Generate(context.Background(), "sys", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
	assert.Equal(t, "sys", got.System)
	assert.Equal(t, []anthropicMessage{{Role: "user", Content: "hi"}}, got.Messages)
	assert.Equal(t, anthropicModel, got.Model)
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient(ctx, ProviderMock, "", "")
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, c.Provider())

	c, err = NewClient(ctx, ProviderOpenAI, "sk", "gpt-3.5-turbo")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, c.Provider())

	_, err = NewClient(ctx, ProviderAnthropic, "", "")
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	_, err = NewClient(ctx, "bard", "k", "")
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()

	reply, err := m.Generate(context.Background(), "sys", "q")
	require.NoError(t, err)
	assert.Equal(t, mockResponse, reply)
	assert.Equal(t, 1, m.CallCount())
	assert.Equal(t, "q", m.GenerateCalls[0].User)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
}
