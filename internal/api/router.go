package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/Harshitk-cp/sheetqa/internal/api/handlers"
	mw "github.com/Harshitk-cp/sheetqa/internal/api/middleware"
	"github.com/Harshitk-cp/sheetqa/internal/buildconfig"
	"github.com/Harshitk-cp/sheetqa/internal/config"
	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"github.com/Harshitk-cp/sheetqa/internal/llm"
	"github.com/Harshitk-cp/sheetqa/internal/service"
	"github.com/Harshitk-cp/sheetqa/internal/source"
	"github.com/Harshitk-cp/sheetqa/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router    *chi.Mux
	Knowledge *service.KnowledgeService
	Answers   *service.AnswerService
	Refresher *service.RefresherService
	Source    domain.KnowledgeSource

	db           *pgxpool.Pool
	stop         context.CancelFunc
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp builds the knowledge source and fallback client from config and
// wires the HTTP router. db may be nil unless the postgres source is used.
func NewApp(ctx context.Context, db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	src, err := source.New(ctx, SourceOptions(db))
	if err != nil {
		return nil, err
	}
	logger.Info("knowledge source initialized", zap.String("source", src.Name()))

	// A missing fallback client is not fatal: knowledge base hits still work
	// and misses surface as external service errors.
	llmProvider := config.LLMProvider()
	llmClient, err := llm.NewClient(ctx, llmProvider, config.LLMAPIKey(), config.LLMModel())
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
		llmClient = nil
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	return newApp(src, llmClient, db, logger), nil
}

// SourceOptions selects the knowledge source from config.
func SourceOptions(db *pgxpool.Pool) source.Options {
	return source.Options{
		Kind:            config.KnowledgeSource(),
		SheetID:         config.SheetID(),
		SheetRange:      config.SheetRange(),
		CredentialsFile: config.GoogleCredentialsFile(),
		GoogleAPIKey:    config.GoogleAPIKey(),
		CSVPath:         config.FactsCSVPath(),
		DB:              db,
	}
}

func newApp(src domain.KnowledgeSource, llmClient domain.LLMClient, db *pgxpool.Pool, logger *zap.Logger) *App {
	// Services
	knowledgeSvc := service.NewKnowledgeService(src, logger)
	resolverSvc := service.NewResolverService(llmClient, logger)
	resolverSvc.SetCutoff(config.MatchCutoff())
	resolverSvc.SetFallbackTimeout(config.FallbackTimeout())
	answerSvc := service.NewAnswerService(knowledgeSvc, resolverSvc, logger)
	refresherSvc := service.NewRefresherService(knowledgeSvc, logger)
	refresherSvc.SetInterval(config.RefreshInterval())

	statusLogger := logStatus(logger)
	knowledgeSvc.SetStatusListener(statusLogger)
	answerSvc.SetStatusListener(statusLogger)

	// Handlers
	answerHandler := handlers.NewAnswerHandler(answerSvc, logger)
	knowledgeHandler := handlers.NewKnowledgeHandler(knowledgeSvc)

	r := chi.NewRouter()
	bgCtx, stop := context.WithCancel(context.Background())

	app := &App{
		Router:    r,
		Knowledge: knowledgeSvc,
		Answers:   answerSvc,
		Refresher: refresherSvc,
		Source:    src,
		db:        db,
		stop:      stop,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(bgCtx, config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", app.healthHandler())
	r.Get("/stats", app.statsHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/answer", answerHandler.Answer)

		r.Route("/knowledge", func(r chi.Router) {
			r.Get("/", knowledgeHandler.Get)
			r.With(mw.AdminKeyAuth(config.AdminAPIKey())).Post("/refresh", knowledgeHandler.Refresh)
		})
	})

	return app
}

// Close stops the router's background goroutines.
func (app *App) Close() {
	app.stop()
}

// logStatus mirrors user-facing status events into the structured log.
func logStatus(logger *zap.Logger) domain.StatusListener {
	return func(ev domain.StatusEvent) {
		fields := []zap.Field{zap.String("kind", string(ev.Kind)), zap.String("message", ev.Message)}
		if ev.Kind == domain.StatusError {
			logger.Warn("status", fields...)
			return
		}
		logger.Debug("status", fields...)
	}
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if app.db != nil {
			if err := app.db.Ping(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		state := app.Knowledge.State()
		if state.Snapshot == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": domain.ErrKnowledgeBaseNotLoaded.Error()})
			return
		}

		status := "ok"
		if state.Stale {
			status = "degraded"
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": status,
			"facts":  state.Snapshot.Len(),
		})
	}
}

func (app *App) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"knowledge_source": app.Source.Name(),
			"go_version":       runtime.Version(),
			"build":            buildconfig.VersionInfo(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure sources and clients satisfy interfaces at compile time.
var (
	_ domain.KnowledgeSource = (*source.SheetsSource)(nil)
	_ domain.KnowledgeSource = (*source.CSVSource)(nil)
	_ domain.KnowledgeSource = (*store.FactStore)(nil)
	_ domain.LLMClient       = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient       = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient       = (*llm.GeminiClient)(nil)
	_ domain.LLMClient       = (*llm.MockClient)(nil)
)
