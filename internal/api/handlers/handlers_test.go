package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Harshitk-cp/sheetqa/internal/llm"
	"github.com/Harshitk-cp/sheetqa/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	rows [][]string
	err  error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Rows(ctx context.Context) ([][]string, error) {
	return s.rows, s.err
}

type fixture struct {
	src       *stubSource
	llm       *llm.MockClient
	knowledge *service.KnowledgeService
	answer    *AnswerHandler
	kh        *KnowledgeHandler
}

func newFixture(t *testing.T, load bool) *fixture {
	t.Helper()
	logger := zap.NewNop()

	src := &stubSource{rows: [][]string{{"1+1", "two"}, {"capital of france", "Paris"}}}
	ks := service.NewKnowledgeService(src, logger)
	if load {
		_, err := ks.Refresh(context.Background())
		require.NoError(t, err)
	}

	mockLLM := llm.NewMockClient()
	answerSvc := service.NewAnswerService(ks, service.NewResolverService(mockLLM, logger), logger)

	return &fixture{
		src:       src,
		llm:       mockLLM,
		knowledge: ks,
		answer:    NewAnswerHandler(answerSvc, logger),
		kh:        NewKnowledgeHandler(ks),
	}
}

func postAnswer(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestAnswerHandler_KnowledgeBaseHit(t *testing.T) {
	f := newFixture(t, true)

	rec := postAnswer(f.answer.Answer, `{"query":"what is 1+1?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "two", body["answer"])
	assert.Equal(t, "knowledge_base", body["source"])
	assert.Equal(t, "1+1", body["lookup_key"])
	assert.Equal(t, "1+1", body["matched_fact"])
	assert.Equal(t, false, body["stale"])
	assert.NotEmpty(t, body["knowledge_loaded_at"])
	assert.Equal(t, 0, f.llm.CallCount())
}

func TestAnswerHandler_Fallback(t *testing.T) {
	f := newFixture(t, true)
	f.llm.GenerateResponse = "Hello!"

	rec := postAnswer(f.answer.Answer, `{"query":"Hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Hello!", body["answer"])
	assert.Equal(t, "fallback", body["source"])
	assert.NotContains(t, body, "matched_fact")
	assert.Equal(t, 1, f.llm.CallCount())
}

func TestAnswerHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		load     bool
		llmErr   error
		body     string
		wantCode int
	}{
		{"bad json", true, nil, `{`, http.StatusBadRequest},
		{"empty query", true, nil, `{"query":"   "}`, http.StatusBadRequest},
		{"missing query", true, nil, `{}`, http.StatusBadRequest},
		{"not loaded", false, nil, `{"query":"hello"}`, http.StatusServiceUnavailable},
		{"fallback failure", true, errors.New("quota"), `{"query":"hello"}`, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.load)
			f.llm.GenerateError = tt.llmErr

			rec := postAnswer(f.answer.Answer, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestKnowledgeHandler_Get(t *testing.T) {
	f := newFixture(t, true)

	rec := httptest.NewRecorder()
	f.kh.Get(rec, httptest.NewRequest(http.MethodGet, "/v1/knowledge", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body knowledgeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "stub", body.Source)
	assert.True(t, body.Loaded)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, map[string]string{"1+1": "two", "capital of france": "Paris"}, body.Facts)

	rec = httptest.NewRecorder()
	f.kh.Get(rec, httptest.NewRequest(http.MethodGet, "/v1/knowledge?summary=true", nil))
	body = knowledgeResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Nil(t, body.Facts)
}

func TestKnowledgeHandler_Refresh(t *testing.T) {
	f := newFixture(t, true)
	f.src.rows = [][]string{{"new fact", "new answer"}}

	rec := httptest.NewRecorder()
	f.kh.Refresh(rec, httptest.NewRequest(http.MethodPost, "/v1/knowledge/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	kb, err := f.knowledge.Current()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"new fact": "new answer"}, kb.Facts())
}

func TestKnowledgeHandler_RefreshFailure(t *testing.T) {
	f := newFixture(t, true)
	f.src.err = errors.New("403 from sheets")

	rec := httptest.NewRecorder()
	f.kh.Refresh(rec, httptest.NewRequest(http.MethodPost, "/v1/knowledge/refresh", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "403 from sheets")

	rec = httptest.NewRecorder()
	f.kh.Get(rec, httptest.NewRequest(http.MethodGet, "/v1/knowledge?summary=true", nil))
	var body knowledgeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Loaded, "previous snapshot still served")
	assert.True(t, body.Stale)
	assert.Contains(t, body.LastRefreshError, "403 from sheets")
}
