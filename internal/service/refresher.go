package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const refreshTimeout = 30 * time.Second

// RefresherService reloads the knowledge base in the background, on a fixed
// interval and whenever Trigger is called.
type RefresherService struct {
	knowledge *KnowledgeService
	logger    *zap.Logger

	interval time.Duration
	trigger  chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewRefresherService(ks *KnowledgeService, logger *zap.Logger) *RefresherService {
	return &RefresherService{
		knowledge: ks,
		logger:    logger,
		trigger:   make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// SetInterval sets the periodic refresh interval. Zero disables the ticker;
// triggered refreshes still run.
func (s *RefresherService) SetInterval(d time.Duration) {
	s.interval = d
}

// Trigger requests a refresh. Requests made while one is pending collapse
// into it.
func (s *RefresherService) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Start runs the refresher in a background goroutine.
func (s *RefresherService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var tick <-chan time.Time
		if s.interval > 0 {
			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		s.logger.Info("knowledge refresher started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-tick:
				s.run("interval")
			case <-s.trigger:
				s.run("trigger")
			case <-s.stopCh:
				s.logger.Info("knowledge refresher stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the refresher.
func (s *RefresherService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *RefresherService) run(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	// KnowledgeService logs the failure; the old snapshot keeps serving.
	if _, err := s.knowledge.Refresh(ctx); err != nil {
		s.logger.Warn("background refresh failed", zap.String("reason", reason), zap.Error(err))
	}
}
