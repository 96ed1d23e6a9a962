package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"github.com/Harshitk-cp/sheetqa/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAnswerService(t *testing.T, rows [][]string) (*AnswerService, *llm.MockClient) {
	t.Helper()

	src := new(MockKnowledgeSource)
	src.On("Rows", mock.Anything).Return(rows, nil)

	ks := NewKnowledgeService(src, zap.NewNop())
	_, err := ks.Refresh(context.Background())
	require.NoError(t, err)

	mockLLM := llm.NewMockClient()
	return NewAnswerService(ks, NewResolverService(mockLLM, zap.NewNop()), zap.NewNop()), mockLLM
}

func TestAnswerService_ExpressionHit(t *testing.T) {
	s, mockLLM := newTestAnswerService(t, [][]string{{"1+1", "two"}})

	res, err := s.Answer(context.Background(), "1+1")
	require.NoError(t, err)
	assert.Equal(t, "two", res.Answer)
	assert.Equal(t, 0, mockLLM.CallCount())
}

func TestAnswerService_ExpressionInsideSentence(t *testing.T) {
	s, mockLLM := newTestAnswerService(t, [][]string{{"12*4", "48"}})

	res, err := s.Answer(context.Background(), "Hey, what is 12*4 please?")
	require.NoError(t, err)
	assert.Equal(t, "48", res.Answer)
	assert.Equal(t, "12*4", res.LookupKey)
	assert.Equal(t, 0, mockLLM.CallCount())
}

func TestAnswerService_ExpressionIsNotEvaluated(t *testing.T) {
	s, mockLLM := newTestAnswerService(t, [][]string{{"1+1", "two"}})

	res, err := s.Answer(context.Background(), "what is 2+3")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolutionFallback, res.Source)
	require.Equal(t, 1, mockLLM.CallCount())
	assert.Equal(t, "2+3", mockLLM.GenerateCalls[0].User, "fallback receives the expression, not the sentence")
}

func TestAnswerService_SpacedExpressionUsesRawQuery(t *testing.T) {
	s, mockLLM := newTestAnswerService(t, [][]string{{"3 + 2", "five"}})

	res, err := s.Answer(context.Background(), " 3 + 2 ")
	require.NoError(t, err)
	assert.Equal(t, "five", res.Answer)
	assert.Equal(t, "3 + 2", res.LookupKey)
	assert.Equal(t, 0, mockLLM.CallCount())
}

func TestAnswerService_EmptyKnowledgeBase(t *testing.T) {
	s, mockLLM := newTestAnswerService(t, nil)

	res, err := s.Answer(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Mock answer", res.Answer)
	assert.Equal(t, 1, mockLLM.CallCount())
}

func TestAnswerService_EmptyQuery(t *testing.T) {
	s, mockLLM := newTestAnswerService(t, [][]string{{"1+1", "two"}})

	for _, q := range []string{"", "   ", "\t\n ", " "} {
		res, err := s.Answer(context.Background(), q)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, domain.ErrEmptyQuery, "%q", q)
	}
	assert.Equal(t, 0, mockLLM.CallCount())
}

func TestAnswerService_FallbackFailure(t *testing.T) {
	s, mockLLM := newTestAnswerService(t, nil)
	mockLLM.GenerateError = errors.New("401 unauthorized")

	var events []domain.StatusEvent
	s.SetStatusListener(func(e domain.StatusEvent) { events = append(events, e) })

	_, err := s.Answer(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrExternalService)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.StatusError, events[len(events)-1].Kind)
}

func TestAnswerService_NotLoaded(t *testing.T) {
	ks := NewKnowledgeService(new(MockKnowledgeSource), zap.NewNop())
	s := NewAnswerService(ks, NewResolverService(llm.NewMockClient(), zap.NewNop()), zap.NewNop())

	_, err := s.Answer(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrKnowledgeBaseNotLoaded)
}

func TestAnswerService_StatusEvents(t *testing.T) {
	s, _ := newTestAnswerService(t, [][]string{{"1+1", "two"}})

	var events []domain.StatusEvent
	s.SetStatusListener(func(e domain.StatusEvent) { events = append(events, e) })

	_, err := s.Answer(context.Background(), "1+1")
	require.NoError(t, err)
	assert.Equal(t, []domain.StatusEvent{
		{Kind: domain.StatusInfo, Message: "Processing your question..."},
		{Kind: domain.StatusSuccess, Message: "Here's the answer:"},
	}, events)
}

func TestAnswerService_ReportsSnapshotItAnsweredFrom(t *testing.T) {
	src := new(MockKnowledgeSource)
	src.On("Rows", mock.Anything).Return([][]string{{"1+1", "two"}}, nil).Once()
	src.On("Rows", mock.Anything).Return(nil, errors.New("sheet unavailable")).Once()

	ks := NewKnowledgeService(src, zap.NewNop())
	kb, err := ks.Refresh(context.Background())
	require.NoError(t, err)
	s := NewAnswerService(ks, NewResolverService(llm.NewMockClient(), zap.NewNop()), zap.NewNop())

	res, err := s.Answer(context.Background(), "1+1")
	require.NoError(t, err)
	assert.Equal(t, kb.LoadedAt, res.KnowledgeLoadedAt)
	assert.False(t, res.Stale)

	_, err = ks.Refresh(context.Background())
	require.Error(t, err)

	res, err = s.Answer(context.Background(), "1+1")
	require.NoError(t, err)
	assert.Equal(t, "two", res.Answer)
	assert.Equal(t, kb.LoadedAt, res.KnowledgeLoadedAt)
	assert.True(t, res.Stale)
}
