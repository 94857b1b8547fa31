package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ProductJudge/internal/decision"
	"ProductJudge/internal/domain"
	"ProductJudge/internal/ports"
)

// AnalyzerDeps wires all driven adapters into the analysis pipeline.
type AnalyzerDeps struct {
	Fetcher   ports.ContentFetcher
	Pros      ports.ArgumentGenerator
	Cons      ports.ArgumentGenerator
	Engine    *decision.Engine
	Rationale ports.RationaleWriter
	Logger    *slog.Logger
	Timeouts  Timeouts
	Retry     RetryPolicy
}

// Timeouts bound each external call; zero means no extra bound beyond the caller's context.
type Timeouts struct {
	Fetch    time.Duration
	Generate time.Duration
	Explain  time.Duration
}

// Analyzer implements the fetch -> generate -> decide workflow.
type Analyzer struct {
	fetcher   ports.ContentFetcher
	pros      ports.ArgumentGenerator
	cons      ports.ArgumentGenerator
	engine    *decision.Engine
	rationale ports.RationaleWriter
	logger    *slog.Logger
	timeouts  Timeouts
	retry     RetryPolicy
}

// NewAnalyzer constructs the orchestration component.
func NewAnalyzer(deps AnalyzerDeps) *Analyzer {
	engine := deps.Engine
	if engine == nil {
		engine = decision.NewEngine(decision.DefaultAggregation)
	}
	return &Analyzer{
		fetcher:   deps.Fetcher,
		pros:      deps.Pros,
		cons:      deps.Cons,
		engine:    engine,
		rationale: deps.Rationale,
		logger:    deps.Logger,
		timeouts:  deps.Timeouts,
		retry:     deps.Retry,
	}
}

// Analyze runs one request end to end. Errors wrap the domain error kinds.
func (a *Analyzer) Analyze(ctx context.Context, req domain.Request) (domain.Report, error) {
	started := time.Now()
	if a.fetcher == nil || a.pros == nil || a.cons == nil {
		return domain.Report{}, fmt.Errorf("%w: analyzer is not fully configured", domain.ErrConfig)
	}
	if a.pros.Polarity() != domain.Pro || a.cons.Polarity() != domain.Con {
		return domain.Report{}, fmt.Errorf("%w: generators are wired to the wrong sides", domain.ErrConfig)
	}

	a.info("analysis started", "url", req.URL, "keywords", len(req.Keywords))

	content, err := a.fetch(ctx, req)
	if err != nil {
		a.warn("fetch failed", "url", req.URL, "error", err)
		return domain.Report{}, err
	}

	pros, cons, err := a.generate(ctx, content.Text)
	if err != nil {
		a.warn("generation failed", "url", req.URL, "error", err)
		return domain.Report{}, err
	}

	d, err := a.engine.Decide(pros, cons)
	if err != nil {
		a.warn("decision rejected arguments", "url", req.URL, "error", err)
		return domain.Report{}, fmt.Errorf("decide: %w", err)
	}

	if a.rationale != nil {
		a.explain(ctx, req, pros, cons, &d)
	}

	report := domain.Report{
		Request:  req,
		Source:   content.Source,
		Pros:     pros,
		Cons:     cons,
		Decision: d,
		Elapsed:  time.Since(started),
	}

	a.info("analysis finished",
		"url", req.URL,
		"source", content.Source,
		"verdict", d.Verdict,
		"pro", d.ProScore,
		"con", d.ConScore,
		"gap", d.Gap,
		"elapsed", report.Elapsed,
	)
	return report, nil
}

func (a *Analyzer) fetch(ctx context.Context, req domain.Request) (domain.Content, error) {
	var content domain.Content
	err := a.retry.Do(ctx, a.logger, func() error {
		fetchCtx, cancel := withTimeout(ctx, a.timeouts.Fetch)
		defer cancel()

		c, err := a.fetcher.Fetch(fetchCtx, req)
		if err != nil {
			return err
		}
		content = c
		return nil
	}, func(err error) bool {
		return errors.Is(err, domain.ErrFetch) && ctx.Err() == nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInput) && !errors.Is(err, domain.ErrFetch) {
			err = fmt.Errorf("%w: %w", domain.ErrFetch, err)
		}
		return domain.Content{}, fmt.Errorf("fetch content: %w", err)
	}
	return content, nil
}

// generate runs both generators concurrently and joins them; the first failure cancels the other.
func (a *Analyzer) generate(ctx context.Context, text string) (domain.ArgumentSet, domain.ArgumentSet, error) {
	var pros, cons domain.ArgumentSet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		callCtx, cancel := withTimeout(gctx, a.timeouts.Generate)
		defer cancel()

		set, err := a.pros.Generate(callCtx, text)
		if err != nil {
			return fmt.Errorf("generate pros: %w", err)
		}
		pros = set
		return nil
	})
	g.Go(func() error {
		callCtx, cancel := withTimeout(gctx, a.timeouts.Generate)
		defer cancel()

		set, err := a.cons.Generate(callCtx, text)
		if err != nil {
			return fmt.Errorf("generate cons: %w", err)
		}
		cons = set
		return nil
	})

	if err := g.Wait(); err != nil {
		if !errors.Is(err, domain.ErrInput) && !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		return domain.ArgumentSet{}, domain.ArgumentSet{}, err
	}
	return pros, cons, nil
}

// explain replaces the templated rationale; on failure the template is kept and the error logged.
func (a *Analyzer) explain(ctx context.Context, req domain.Request, pros, cons domain.ArgumentSet, d *domain.Decision) {
	callCtx, cancel := withTimeout(ctx, a.timeouts.Explain)
	defer cancel()

	text, err := a.rationale.Explain(callCtx, req, pros, cons, *d)
	if err != nil {
		a.warn("rationale generation failed, keeping templated rationale", "url", req.URL, "error", err)
		return
	}
	d.Rationale = text
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (a *Analyzer) info(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *Analyzer) warn(msg string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
