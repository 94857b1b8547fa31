package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ProductJudge/internal/config"
	"ProductJudge/internal/decision"
	"ProductJudge/internal/domain"
	"ProductJudge/internal/fetcher"
	"ProductJudge/internal/handler"
	"ProductJudge/internal/infrastructure/browser"
	"ProductJudge/internal/infrastructure/llm"
	"ProductJudge/internal/infrastructure/parser"
	"ProductJudge/internal/infrastructure/search"
	"ProductJudge/internal/logging"
	"ProductJudge/internal/ports"
	"ProductJudge/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	analyzer  *usecase.Analyzer
	router    *gin.Engine
	closeChat func() error
}

// New validates the configuration and builds every adapter of the pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	policy, err := decision.ParsePolicy(cfg.Decision.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}

	registry := fetcher.NewRegistry()
	registry.Register(search.NewTavilyClient(cfg.Search, baseLogger.With("component", "fetcher.search")))
	registry.Register(parser.NewPageScraper(nil, cfg.Fetch.UserAgent, baseLogger.With("component", "fetcher.page")))
	registry.Register(browser.NewScraper(cfg.Fetch.UserAgent, cfg.Fetch.BrowserSettle, baseLogger.With("component", "fetcher.browser")))
	for _, name := range cfg.Fetch.Strategies {
		if _, err := registry.Resolve(name); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
	}
	source := fetcher.NewSource(registry, cfg.Fetch.Strategies, cfg.Fetch.MaxChars, baseLogger.With("component", "fetcher"))

	chat, closeChat, err := llm.NewChatClient(ctx, cfg.Reasoning)
	if err != nil {
		return nil, err
	}
	baseLogger.Info("reasoning backend ready", "backend", chat.Name())

	var rationale ports.RationaleWriter
	if cfg.Reasoning.LLMRationale {
		rationale = llm.NewRationaleWriter(chat)
	}

	analyzer := usecase.NewAnalyzer(usecase.AnalyzerDeps{
		Fetcher:   source,
		Pros:      llm.NewArgumentGenerator(chat, domain.Pro, cfg.Reasoning.MaxArguments, baseLogger.With("component", "generator.pro")),
		Cons:      llm.NewArgumentGenerator(chat, domain.Con, cfg.Reasoning.MaxArguments, baseLogger.With("component", "generator.con")),
		Engine:    decision.NewEngine(policy),
		Rationale: rationale,
		Logger:    baseLogger.With("component", "analyzer"),
		Timeouts: usecase.Timeouts{
			Fetch:    cfg.Timeouts.Fetch,
			Generate: cfg.Timeouts.Generate,
			Explain:  cfg.Timeouts.Explain,
		},
		Retry: usecase.RetryPolicy{Retries: cfg.Fetch.Retries, Backoff: cfg.Fetch.RetryBackoff},
	})

	app := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		analyzer:  analyzer,
		closeChat: closeChat,
	}
	app.router = setupRouter(cfg.Server, analyzer, baseLogger.With("component", "http"))
	return app, nil
}

// Analyzer exposes the pipeline for front ends other than HTTP.
func (a *Application) Analyzer() *usecase.Analyzer {
	return a.analyzer
}

// Handler returns the HTTP router.
func (a *Application) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(a.cfg.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close releases the reasoning backend.
func (a *Application) Close() error {
	if a.closeChat == nil {
		return nil
	}
	return a.closeChat()
}

func setupRouter(cfg config.ServerConfig, analyzer handler.ProductAnalyzer, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowOrigins:  cfg.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	handler.NewAnalyzeHandler(analyzer, logger).Register(router)
	return router
}
