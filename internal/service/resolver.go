package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"github.com/Harshitk-cp/sheetqa/internal/metrics"
	"go.uber.org/zap"
)

// SystemPrompt is sent with every fallback call.
const SystemPrompt = "You are a helpful assistant."

const defaultFallbackTimeout = 30 * time.Second

var errFallbackUnavailable = errors.New("no LLM client configured")

// ResolverService answers a query from a knowledge base snapshot, deferring
// to the LLM fallback when nothing in the snapshot is close enough.
type ResolverService struct {
	fallback domain.LLMClient
	logger   *zap.Logger

	cutoff  float64
	timeout time.Duration
}

func NewResolverService(fallback domain.LLMClient, logger *zap.Logger) *ResolverService {
	return &ResolverService{
		fallback: fallback,
		logger:   logger,
		cutoff:   DefaultMatchCutoff,
		timeout:  defaultFallbackTimeout,
	}
}

func (s *ResolverService) SetCutoff(cutoff float64) {
	s.cutoff = cutoff
}

// SetFallbackTimeout bounds each fallback call. Zero leaves the caller's
// context untouched.
func (s *ResolverService) SetFallbackTimeout(d time.Duration) {
	s.timeout = d
}

// Resolve looks query up in kb. A hit returns the stored answer without
// calling the fallback; a miss sends the canonical query to the fallback and
// returns its reply unchanged. Fallback failures come back as
// *domain.ExternalServiceError.
func (s *ResolverService) Resolve(ctx context.Context, query string, kb *domain.KnowledgeBase) (*domain.Resolution, error) {
	canonical := strings.ToLower(strings.TrimSpace(query))

	if key, score, ok := closestMatch(canonical, kb.Keys(), s.cutoff); ok {
		answer, _ := kb.Lookup(key)
		metrics.RecordResolution(metrics.OutcomeKnowledgeBase)
		s.logger.Debug("knowledge base hit",
			zap.String("query", canonical),
			zap.String("fact", key),
			zap.Float64("score", score))
		return &domain.Resolution{
			Answer:      answer,
			Source:      domain.ResolutionKnowledgeBase,
			LookupKey:   canonical,
			MatchedFact: key,
			Score:       score,
		}, nil
	}

	if s.fallback == nil {
		metrics.RecordResolution(metrics.OutcomeError)
		return nil, &domain.ExternalServiceError{Provider: "none", Err: errFallbackUnavailable}
	}

	answer, err := s.generate(ctx, canonical)
	if err != nil {
		metrics.RecordResolution(metrics.OutcomeError)
		s.logger.Error("fallback failed",
			zap.String("provider", s.fallback.Provider()),
			zap.String("query", canonical),
			zap.Error(err))
		return nil, &domain.ExternalServiceError{Provider: s.fallback.Provider(), Err: err}
	}

	metrics.RecordResolution(metrics.OutcomeFallback)
	return &domain.Resolution{
		Answer:    answer,
		Source:    domain.ResolutionFallback,
		LookupKey: canonical,
	}, nil
}

func (s *ResolverService) generate(ctx context.Context, query string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := s.fallback.Generate(ctx, SystemPrompt, query)
	elapsed := time.Since(start)
	metrics.RecordFallbackLatency(s.fallback.Provider(), elapsed)

	s.logger.Info("fallback answered",
		zap.String("provider", s.fallback.Provider()),
		zap.Duration("duration", elapsed),
		zap.Bool("ok", err == nil))
	return answer, err
}
