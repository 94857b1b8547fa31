package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ProductJudge/internal/domain"
	"ProductJudge/internal/fetcher"
)

var spaceExpr = regexp.MustCompile(`\s+`)

// minBlockLen drops menu labels, buttons and similar fragments.
const minBlockLen = 25

// PageScraper downloads the product page and extracts readable text blocks.
type PageScraper struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ fetcher.Strategy = (*PageScraper)(nil)

// NewPageScraper wires an HTTP client; a nil client gets a 20s timeout.
func NewPageScraper(client *http.Client, userAgent string, log *slog.Logger) *PageScraper {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if userAgent == "" {
		userAgent = "ProductJudge/1.0"
	}
	return &PageScraper{client: client, userAgent: userAgent, logger: log}
}

// Name identifies the strategy inside the registry.
func (p *PageScraper) Name() string {
	return "page"
}

// Fetch downloads req.URL and returns its text, keyword-bearing blocks first.
func (p *PageScraper) Fetch(ctx context.Context, req domain.Request) (domain.Content, error) {
	doc, err := p.fetchDocument(ctx, req.URL)
	if err != nil {
		return domain.Content{}, err
	}

	text := ExtractText(doc, req.Keywords)
	if p.logger != nil {
		p.logger.Debug("page extracted", "url", req.URL, "chars", len(text))
	}

	return domain.Content{URL: req.URL, Text: text, Source: p.Name()}, nil
}

func (p *PageScraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// ExtractText pulls the title, meta description and content blocks out of a page.
// Blocks mentioning any keyword come before the rest; duplicates are dropped.
func ExtractText(doc *goquery.Document, keywords []string) string {
	doc.Find("script, style, noscript, svg, iframe, nav, footer, header, form").Remove()

	var (
		head     []string
		matching []string
		rest     []string
		seen     = map[string]struct{}{}
	)

	add := func(dst *[]string, text string) {
		text = normalize(text)
		if text == "" {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		*dst = append(*dst, text)
	}

	add(&head, doc.Find("title").First().Text())
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		add(&head, desc)
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		add(&head, desc)
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	doc.Find("h1, h2, h3, p, li, td, blockquote, [itemprop=description], [itemprop=reviewBody]").Each(func(_ int, s *goquery.Selection) {
		// Containers repeat their children's text; keep only leaf-level blocks.
		if s.Find("p, li").Length() > 0 {
			return
		}
		text := normalize(s.Text())
		if len(text) < minBlockLen && !isHeading(goquery.NodeName(s)) {
			return
		}
		if containsAny(strings.ToLower(text), lowered) {
			add(&matching, text)
			return
		}
		add(&rest, text)
	})

	blocks := make([]string, 0, len(head)+len(matching)+len(rest))
	blocks = append(blocks, head...)
	blocks = append(blocks, matching...)
	blocks = append(blocks, rest...)
	return strings.Join(blocks, "\n")
}

func normalize(text string) string {
	return strings.TrimSpace(spaceExpr.ReplaceAllString(text, " "))
}

func isHeading(name string) bool {
	return name == "h1" || name == "h2" || name == "h3"
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
