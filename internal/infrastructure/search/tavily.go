package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ProductJudge/internal/config"
	"ProductJudge/internal/domain"
	"ProductJudge/internal/fetcher"
)

// TavilyClient searches the web for the product and returns result snippets as product text.
type TavilyClient struct {
	endpoint   string
	apiKey     string
	maxResults int
	depth      string
	http       *http.Client
	logger     *slog.Logger
}

var _ fetcher.Strategy = (*TavilyClient)(nil)

type searchRequest struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth,omitempty"`
	MaxResults        int    `json:"max_results,omitempty"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type searchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer"`
	Results []searchResult `json:"results"`
}

// NewTavilyClient creates a reusable HTTP client from configuration.
func NewTavilyClient(cfg config.SearchConfig, log *slog.Logger) *TavilyClient {
	return &TavilyClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		maxResults: cfg.MaxResults,
		depth:      cfg.Depth,
		http:       &http.Client{Timeout: 20 * time.Second},
		logger:     log,
	}
}

// Name identifies the strategy inside the registry.
func (c *TavilyClient) Name() string {
	return "search"
}

// Fetch runs one search built from the keywords and the product page, then joins the snippets.
func (c *TavilyClient) Fetch(ctx context.Context, req domain.Request) (domain.Content, error) {
	if c.apiKey == "" || c.endpoint == "" {
		return domain.Content{}, fmt.Errorf("tavily client misconfigured")
	}

	payload := searchRequest{
		Query:       BuildQuery(req),
		SearchDepth: c.depth,
		MaxResults:  c.maxResults,
	}

	var resp searchResponse
	if err := c.post(ctx, payload, &resp); err != nil {
		return domain.Content{}, err
	}

	if c.logger != nil {
		c.logger.Debug("search results", "query", payload.Query, "results", len(resp.Results))
	}

	var b strings.Builder
	if answer := strings.TrimSpace(resp.Answer); answer != "" {
		b.WriteString(answer)
		b.WriteString("\n\n")
	}
	for _, r := range resp.Results {
		body := strings.TrimSpace(r.Content)
		if raw := strings.TrimSpace(r.RawContent); raw != "" {
			body = raw
		}
		if body == "" {
			continue
		}
		fmt.Fprintf(&b, "%s (%s)\n%s\n\n", strings.TrimSpace(r.Title), r.URL, body)
	}

	return domain.Content{URL: req.URL, Text: strings.TrimSpace(b.String()), Source: c.Name()}, nil
}

// BuildQuery asks for reviews of the keywords, pinned to the product's site name.
func BuildQuery(req domain.Request) string {
	query := strings.Join(req.Keywords, " ")
	if u, err := url.Parse(req.URL); err == nil && u.Host != "" {
		query = fmt.Sprintf("%s %s", query, strings.TrimPrefix(u.Hostname(), "www."))
	}
	return strings.TrimSpace(query + " review pros cons")
}

func (c *TavilyClient) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tavily error %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
