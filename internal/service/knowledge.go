package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"github.com/Harshitk-cp/sheetqa/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// KnowledgeState describes the snapshot currently being served.
type KnowledgeState struct {
	Snapshot         *domain.KnowledgeBase
	LastRefreshError string
	LastRefreshAt    time.Time
	Stale            bool
}

type refreshFailure struct {
	err error
	at  time.Time
}

// KnowledgeService owns the knowledge base snapshot. Readers get the current
// immutable snapshot; Refresh builds a new one from the source and swaps it
// in. A failed refresh leaves the previous snapshot in place and marks it
// stale.
type KnowledgeService struct {
	source domain.KnowledgeSource
	logger *zap.Logger

	current     atomic.Pointer[domain.KnowledgeBase]
	lastFailure atomic.Pointer[refreshFailure]
	group       singleflight.Group

	mu     sync.RWMutex
	status domain.StatusListener
}

func NewKnowledgeService(source domain.KnowledgeSource, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{
		source: source,
		logger: logger,
	}
}

// SetStatusListener receives load progress events.
func (s *KnowledgeService) SetStatusListener(l domain.StatusListener) {
	s.mu.Lock()
	s.status = l
	s.mu.Unlock()
}

func (s *KnowledgeService) emit(kind domain.StatusKind, msg string) {
	s.mu.RLock()
	l := s.status
	s.mu.RUnlock()
	l.Emit(kind, msg)
}

func (s *KnowledgeService) SourceName() string {
	return s.source.Name()
}

// Current returns the snapshot in use, or ErrKnowledgeBaseNotLoaded before
// the first successful load.
func (s *KnowledgeService) Current() (*domain.KnowledgeBase, error) {
	kb := s.current.Load()
	if kb == nil {
		return nil, domain.ErrKnowledgeBaseNotLoaded
	}
	return kb, nil
}

func (s *KnowledgeService) State() KnowledgeState {
	state := KnowledgeState{Snapshot: s.current.Load()}
	if f := s.lastFailure.Load(); f != nil {
		state.LastRefreshError = f.err.Error()
		state.LastRefreshAt = f.at
		state.Stale = state.Snapshot != nil && !f.at.Before(state.Snapshot.LoadedAt)
	} else if state.Snapshot != nil {
		state.LastRefreshAt = state.Snapshot.LoadedAt
	}
	return state
}

// Refresh reloads the knowledge base from its source. Concurrent callers
// share one load. The load is detached from ctx and bounded by
// refreshTimeout, so a caller that gives up returns ctx.Err() while the load
// still completes for everyone else. Load errors are *domain.LoadError.
func (s *KnowledgeService) Refresh(ctx context.Context) (*domain.KnowledgeBase, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			s.logger.Debug("joined in-flight knowledge refresh")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.KnowledgeBase), nil
	}
}

func (s *KnowledgeService) load(ctx context.Context) (*domain.KnowledgeBase, error) {
	name := s.source.Name()
	s.emit(domain.StatusInfo, fmt.Sprintf("Loading data from %s...", name))

	start := time.Now()
	rows, err := s.source.Rows(ctx)
	if err != nil {
		loadErr := &domain.LoadError{Source: name, Err: err}
		s.lastFailure.Store(&refreshFailure{err: loadErr, at: time.Now().UTC()})
		metrics.RecordRefresh(name, err, 0)
		s.logger.Error("knowledge base load failed", zap.String("source", name), zap.Error(err))
		s.emit(domain.StatusError, fmt.Sprintf("Failed to load data from %s: %v", name, err))
		return nil, loadErr
	}

	kb := domain.NewKnowledgeBase(name, rows)
	s.current.Store(kb)
	s.lastFailure.Store(nil)
	metrics.RecordRefresh(name, nil, kb.Len())

	s.logger.Info("knowledge base loaded",
		zap.String("source", name),
		zap.Int("rows", len(rows)),
		zap.Int("facts", kb.Len()),
		zap.Duration("duration", time.Since(start)))
	s.emit(domain.StatusSuccess, fmt.Sprintf("Data loaded successfully! %d facts.", kb.Len()))
	return kb, nil
}
