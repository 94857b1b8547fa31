package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"ProductJudge/internal/domain"
	"ProductJudge/internal/fetcher"
	"ProductJudge/internal/infrastructure/parser"
	"ProductJudge/pkg/logger"
)

const defaultBrowserUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Renderer returns the fully rendered HTML of a page.
type Renderer func(ctx context.Context, pageURL string) (string, error)

// Scraper renders JS-heavy product pages in headless Chrome before extracting text.
type Scraper struct {
	render Renderer
	logger *slog.Logger
}

var _ fetcher.Strategy = (*Scraper)(nil)

// NewScraper uses chromedp with the given user agent and settle delay.
func NewScraper(userAgent string, settle time.Duration, log *slog.Logger) *Scraper {
	return &Scraper{render: chromeRenderer(userAgent, settle, log), logger: log}
}

// NewScraperWithRenderer swaps the renderer, e.g. for tests without Chrome.
func NewScraperWithRenderer(render Renderer, log *slog.Logger) *Scraper {
	return &Scraper{render: render, logger: log}
}

// Name identifies the strategy inside the registry.
func (s *Scraper) Name() string {
	return "browser"
}

// Fetch renders req.URL and extracts its text.
func (s *Scraper) Fetch(ctx context.Context, req domain.Request) (domain.Content, error) {
	html, err := s.render(ctx, req.URL)
	if err != nil {
		return domain.Content{}, fmt.Errorf("render page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.Content{}, fmt.Errorf("parse rendered document: %w", err)
	}

	text := parser.ExtractText(doc, req.Keywords)
	if s.logger != nil {
		s.logger.Debug("browser extracted", "url", req.URL, "chars", len(text))
	}
	return domain.Content{URL: req.URL, Text: text, Source: s.Name()}, nil
}

func chromeRenderer(userAgent string, settle time.Duration, log *slog.Logger) Renderer {
	if userAgent == "" {
		userAgent = defaultBrowserUA
	}
	return func(ctx context.Context, pageURL string) (string, error) {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.UserAgent(userAgent),
			chromedp.WindowSize(1280, 900),
		)

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
		defer cancelAlloc()

		tabCtx, cancelTab := chromedp.NewContext(allocCtx,
			chromedp.WithLogf(logger.Printf(log, "browser", slog.LevelDebug)),
			chromedp.WithErrorf(logger.Printf(log, "browser", slog.LevelWarn)),
		)
		defer cancelTab()

		var html string
		err := chromedp.Run(tabCtx,
			chromedp.Navigate(pageURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Sleep(settle),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		if err != nil {
			return "", err
		}
		return html, nil
	}
}
