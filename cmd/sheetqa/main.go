// Command sheetqa answers questions from the terminal against the configured
// knowledge base, falling back to the configured LLM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Harshitk-cp/sheetqa/internal/api"
	"github.com/Harshitk-cp/sheetqa/internal/config"
	"github.com/Harshitk-cp/sheetqa/internal/llm"
	"github.com/Harshitk-cp/sheetqa/internal/service"
	"github.com/Harshitk-cp/sheetqa/internal/source"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(openSession, os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// session is the set of services a command runs against.
type session struct {
	knowledge *service.KnowledgeService
	answers   *service.AnswerService
	close     func()
}

type sessionFactory func(ctx context.Context) (*session, error)

// openSession wires services from the environment the same way the server
// does, minus the HTTP layer.
func openSession(ctx context.Context) (*session, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	closers := []func(){}

	var pool *pgxpool.Pool
	if dbURL := config.DatabaseURL(); dbURL != "" && config.KnowledgeSource() == source.KindPostgres {
		p, err := pgxpool.New(ctx, dbURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		pool = p
		closers = append(closers, p.Close)
	}

	src, err := source.New(ctx, api.SourceOptions(pool))
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}

	// Without a client, misses report an external service error.
	llmClient, err := llm.NewClient(ctx, config.LLMProvider(), config.LLMAPIKey(), config.LLMModel())
	if err != nil {
		llmClient = nil
	}

	knowledge := service.NewKnowledgeService(src, logger)
	resolver := service.NewResolverService(llmClient, logger)
	resolver.SetCutoff(config.MatchCutoff())
	resolver.SetFallbackTimeout(config.FallbackTimeout())

	return &session{
		knowledge: knowledge,
		answers:   service.NewAnswerService(knowledge, resolver, logger),
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}
