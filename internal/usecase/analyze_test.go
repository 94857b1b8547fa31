package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ProductJudge/internal/decision"
	"ProductJudge/internal/domain"
)

type fakeFetcher struct {
	mu      sync.Mutex
	results []error
	text    string
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, req domain.Request) (domain.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	f.calls++
	if idx < len(f.results) && f.results[idx] != nil {
		return domain.Content{}, f.results[idx]
	}
	return domain.Content{URL: req.URL, Text: f.text, Source: "fake"}, nil
}

type fakeGenerator struct {
	polarity domain.Polarity
	args     []domain.Argument
	err      error
	delay    time.Duration
	inFlight *int32
	peak     *int32
}

func (g *fakeGenerator) Polarity() domain.Polarity { return g.polarity }

func (g *fakeGenerator) Generate(ctx context.Context, text string) (domain.ArgumentSet, error) {
	if g.inFlight != nil {
		n := atomic.AddInt32(g.inFlight, 1)
		defer atomic.AddInt32(g.inFlight, -1)
		for {
			p := atomic.LoadInt32(g.peak)
			if n <= p || atomic.CompareAndSwapInt32(g.peak, p, n) {
				break
			}
		}
	}
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return domain.ArgumentSet{}, fmt.Errorf("%w: %w", domain.ErrGeneration, ctx.Err())
		}
	}
	if g.err != nil {
		return domain.ArgumentSet{}, g.err
	}
	return domain.NewArgumentSet(g.polarity, g.args...), nil
}

type fakeRationale struct {
	text string
	err  error
}

func (r *fakeRationale) Explain(ctx context.Context, req domain.Request, pros, cons domain.ArgumentSet, d domain.Decision) (string, error) {
	return r.text, r.err
}

var request = domain.Request{URL: "https://shop.example.com/x2", Keywords: []string{"acme", "x2"}}

func newAnalyzer(f *fakeFetcher, pros, cons *fakeGenerator) *Analyzer {
	return NewAnalyzer(AnalyzerDeps{
		Fetcher:  f,
		Pros:     pros,
		Cons:     cons,
		Engine:   decision.NewEngine(decision.AggregateMean),
		Timeouts: Timeouts{Fetch: time.Second, Generate: time.Second, Explain: time.Second},
		Retry:    RetryPolicy{Retries: 1, Backoff: time.Millisecond},
	})
}

func TestAnalyzeBuy(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(
		&fakeFetcher{text: "Acme X2 is durable"},
		&fakeGenerator{polarity: domain.Pro, args: []domain.Argument{{Text: "durable", Score: 80}, {Text: "great battery", Score: 70}}},
		&fakeGenerator{polarity: domain.Con, args: []domain.Argument{{Text: "pricey", Score: -10}}},
	)

	report, err := a.Analyze(context.Background(), request)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if report.Decision.Verdict != domain.VerdictBuy || report.Decision.Gap != 65 {
		t.Fatalf("unexpected decision %+v", report.Decision)
	}
	if report.Source != "fake" || report.Pros.Len() != 2 || report.Cons.Len() != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestAnalyzeRunsGeneratorsConcurrently(t *testing.T) {
	t.Parallel()

	var inFlight, peak int32
	a := newAnalyzer(
		&fakeFetcher{text: "text"},
		&fakeGenerator{polarity: domain.Pro, delay: 50 * time.Millisecond, inFlight: &inFlight, peak: &peak},
		&fakeGenerator{polarity: domain.Con, delay: 50 * time.Millisecond, inFlight: &inFlight, peak: &peak},
	)

	report, err := a.Analyze(context.Background(), request)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if atomic.LoadInt32(&peak) != 2 {
		t.Fatalf("expected both generators in flight together, peak %d", peak)
	}
	if report.Decision.Verdict != domain.VerdictNeutralSkip || !strings.Contains(report.Decision.Rationale, "nsufficient information") {
		t.Fatalf("expected insufficient information, got %+v", report.Decision)
	}
}

func TestAnalyzeRetriesFetchOnce(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{text: "text", results: []error{fmt.Errorf("%w: search timed out", domain.ErrFetch)}}
	a := newAnalyzer(f,
		&fakeGenerator{polarity: domain.Pro, args: []domain.Argument{{Text: "ok", Score: 50}}},
		&fakeGenerator{polarity: domain.Con, args: []domain.Argument{{Text: "ok", Score: -40}}},
	)

	report, err := a.Analyze(context.Background(), request)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if f.calls != 2 {
		t.Fatalf("expected one retry, got %d calls", f.calls)
	}
	if report.Decision.Verdict != domain.VerdictNeutralSkip || report.Decision.Gap != 10 {
		t.Fatalf("unexpected decision %+v", report.Decision)
	}
}

func TestAnalyzeFetchFailure(t *testing.T) {
	t.Parallel()

	fetchErr := fmt.Errorf("%w: all strategies failed", domain.ErrFetch)
	f := &fakeFetcher{results: []error{fetchErr, fetchErr, fetchErr}}
	a := newAnalyzer(f, &fakeGenerator{polarity: domain.Pro}, &fakeGenerator{polarity: domain.Con})

	_, err := a.Analyze(context.Background(), request)
	if Classify(err) != FailureFetch {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	if f.calls != 2 {
		t.Fatalf("expected exactly two attempts, got %d", f.calls)
	}
	if UserMessage(err) != fetchMessage {
		t.Fatalf("unexpected message %q", UserMessage(err))
	}
}

func TestAnalyzeInputErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{results: []error{fmt.Errorf("%w: please provide both the product URL and keywords", domain.ErrInput)}}
	a := newAnalyzer(f, &fakeGenerator{polarity: domain.Pro}, &fakeGenerator{polarity: domain.Con})

	_, err := a.Analyze(context.Background(), domain.Request{})
	if Classify(err) != FailureInput || f.calls != 1 {
		t.Fatalf("expected single input failure, got %v after %d calls", err, f.calls)
	}
	if got := UserMessage(err); got != "Please provide both the product URL and keywords." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAnalyzeGenerationFailure(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(
		&fakeFetcher{text: "text"},
		&fakeGenerator{polarity: domain.Pro, delay: time.Second},
		&fakeGenerator{polarity: domain.Con, err: fmt.Errorf("%w: rate limited", domain.ErrGeneration)},
	)

	started := time.Now()
	_, err := a.Analyze(context.Background(), request)
	if !errors.Is(err, domain.ErrGeneration) || Classify(err) != FailureAnalysis {
		t.Fatalf("expected generation failure, got %v", err)
	}
	if time.Since(started) > 500*time.Millisecond {
		t.Fatalf("failing generator should cancel the other one")
	}
	if UserMessage(err) != analysisMessage {
		t.Fatalf("unexpected message %q", UserMessage(err))
	}
}

func TestAnalyzeGenerationTimeout(t *testing.T) {
	t.Parallel()

	a := NewAnalyzer(AnalyzerDeps{
		Fetcher:  &fakeFetcher{text: "text"},
		Pros:     &fakeGenerator{polarity: domain.Pro, delay: time.Second},
		Cons:     &fakeGenerator{polarity: domain.Con},
		Timeouts: Timeouts{Generate: 20 * time.Millisecond},
	})

	_, err := a.Analyze(context.Background(), request)
	if !errors.Is(err, context.DeadlineExceeded) || Classify(err) != FailureAnalysis {
		t.Fatalf("expected analysis timeout, got %v", err)
	}
}

func TestAnalyzeRejectsOutOfRangeScores(t *testing.T) {
	t.Parallel()

	a := newAnalyzer(
		&fakeFetcher{text: "text"},
		&fakeGenerator{polarity: domain.Pro, args: []domain.Argument{{Text: "fine", Score: 40}}},
		&fakeGenerator{polarity: domain.Con, args: []domain.Argument{{Text: "bad", Score: 40}}},
	)

	_, err := a.Analyze(context.Background(), request)
	if !errors.Is(err, domain.ErrConsistency) || UserMessage(err) != analysisMessage {
		t.Fatalf("expected consistency error surfaced as analysis failure, got %v", err)
	}
}

func TestAnalyzeRationaleWriter(t *testing.T) {
	t.Parallel()

	deps := AnalyzerDeps{
		Fetcher: &fakeFetcher{text: "text"},
		Pros:    &fakeGenerator{polarity: domain.Pro, args: []domain.Argument{{Text: "nice color", Score: 20}}},
		Cons:    &fakeGenerator{polarity: domain.Con, args: []domain.Argument{{Text: "breaks fast", Score: -90}, {Text: "bad support", Score: -70}}},
	}

	deps.Rationale = &fakeRationale{text: `Skip it: "breaks fast" says it all.`}
	report, err := NewAnalyzer(deps).Analyze(context.Background(), request)
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if report.Decision.Verdict != domain.VerdictSkip || report.Decision.Rationale != `Skip it: "breaks fast" says it all.` {
		t.Fatalf("unexpected decision %+v", report.Decision)
	}

	deps.Rationale = &fakeRationale{err: fmt.Errorf("%w: overloaded", domain.ErrGeneration)}
	report, err = NewAnalyzer(deps).Analyze(context.Background(), request)
	if err != nil {
		t.Fatalf("rationale failure must not fail the run: %v", err)
	}
	if !strings.Contains(report.Decision.Rationale, "breaks fast") {
		t.Fatalf("expected templated rationale, got %q", report.Decision.Rationale)
	}
}

func TestAnalyzeMisconfigured(t *testing.T) {
	t.Parallel()

	_, err := NewAnalyzer(AnalyzerDeps{}).Analyze(context.Background(), request)
	if Classify(err) != FailureConfig {
		t.Fatalf("expected config failure, got %v", err)
	}

	swapped := NewAnalyzer(AnalyzerDeps{
		Fetcher: &fakeFetcher{},
		Pros:    &fakeGenerator{polarity: domain.Con},
		Cons:    &fakeGenerator{polarity: domain.Pro},
	})
	if _, err := swapped.Analyze(context.Background(), request); Classify(err) != FailureConfig {
		t.Fatalf("expected config failure for swapped generators, got %v", err)
	}
}

func TestRetryPolicyStopsOnContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := RetryPolicy{Retries: 3, Backoff: time.Hour}.Do(ctx, nil, func() error {
		calls++
		cancel()
		return errors.New("boom")
	}, nil)
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("expected cancellation after first call, got %v (%d calls)", err, calls)
	}
}
