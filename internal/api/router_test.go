package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Harshitk-cp/sheetqa/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	rows [][]string
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Rows(ctx context.Context) ([][]string, error) {
	return s.rows, nil
}

func newTestApp(t *testing.T, adminKey string) (*App, *llm.MockClient) {
	t.Helper()
	t.Setenv("ADMIN_API_KEY", adminKey)
	t.Setenv("RATE_LIMIT_RPS", "1000")
	t.Setenv("RATE_LIMIT_BURST", "1000")

	mockLLM := llm.NewMockClient()
	app := newApp(&staticSource{rows: [][]string{{"2*3", "six"}}}, mockLLM, nil, zap.NewNop())
	t.Cleanup(app.Close)
	return app, mockLLM
}

func do(app *App, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_HealthBeforeAndAfterLoad(t *testing.T) {
	app, _ := newTestApp(t, "")

	rec := do(app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	_, err := app.Knowledge.Refresh(context.Background())
	require.NoError(t, err)

	rec = do(app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_AnswerFlow(t *testing.T) {
	app, mockLLM := newTestApp(t, "")
	_, err := app.Knowledge.Refresh(context.Background())
	require.NoError(t, err)

	rec := do(app, http.MethodPost, "/v1/answer", `{"query":"what is 2*3?"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"answer":"six"`)
	assert.Equal(t, 0, mockLLM.CallCount())

	rec = do(app, http.MethodPost, "/v1/answer", `{"query":"who wrote hamlet"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"source":"fallback"`)
	assert.Equal(t, 1, mockLLM.CallCount())
}

func TestRouter_RefreshRequiresAdminKey(t *testing.T) {
	app, _ := newTestApp(t, "s3cret")

	rec := do(app, http.MethodPost, "/v1/knowledge/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(app, http.MethodPost, "/v1/knowledge/refresh", "", map[string]string{"Authorization": "Bearer s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["loaded"])
	assert.EqualValues(t, 1, body["count"])

	// Reads stay open.
	rec = do(app, http.MethodGet, "/v1/knowledge", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"2*3":"six"`)
}

func TestRouter_StatsAndMetrics(t *testing.T) {
	app, _ := newTestApp(t, "")

	do(app, http.MethodGet, "/health", "", nil)

	rec := do(app, http.MethodGet, "/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "static", stats["knowledge_source"])
	assert.EqualValues(t, 2, stats["request_count"], "includes the /stats request itself")
	assert.EqualValues(t, 1, stats["error_count"])

	rec = do(app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sheetqa_http_requests_total")
}
