package service

import (
	"context"
	"strings"

	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"go.uber.org/zap"
)

// AnswerService routes a raw user question: an embedded arithmetic
// expression is looked up on its own, anything else is looked up as typed.
type AnswerService struct {
	knowledge *KnowledgeService
	resolver  *ResolverService
	logger    *zap.Logger
	status    domain.StatusListener
}

func NewAnswerService(knowledge *KnowledgeService, resolver *ResolverService, logger *zap.Logger) *AnswerService {
	return &AnswerService{
		knowledge: knowledge,
		resolver:  resolver,
		logger:    logger,
	}
}

func (s *AnswerService) SetStatusListener(l domain.StatusListener) {
	s.status = l
}

// Answer resolves query against the current knowledge base snapshot.
func (s *AnswerService) Answer(ctx context.Context, query string) (*domain.Resolution, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.status.Emit(domain.StatusError, "Please enter a valid question.")
		return nil, domain.ErrEmptyQuery
	}

	// One read gives the snapshot and its staleness together, so a concurrent
	// refresh cannot make the reported state disagree with the answer.
	state := s.knowledge.State()
	kb := state.Snapshot
	if kb == nil {
		return nil, domain.ErrKnowledgeBaseNotLoaded
	}

	s.status.Emit(domain.StatusInfo, "Processing your question...")

	lookup := trimmed
	if expr, ok := NormalizeQuery(trimmed); ok {
		s.logger.Debug("query normalized", zap.String("query", trimmed), zap.String("expression", expr))
		lookup = expr
	}

	res, err := s.resolver.Resolve(ctx, lookup, kb)
	if err != nil {
		s.status.Emit(domain.StatusError, "An error occurred: "+err.Error())
		return nil, err
	}

	res.KnowledgeLoadedAt = kb.LoadedAt
	res.Stale = state.Stale

	s.status.Emit(domain.StatusSuccess, "Here's the answer:")
	return res, nil
}
