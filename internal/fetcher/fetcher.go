package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"ProductJudge/internal/domain"
)

// Strategy captures a single way of obtaining product text (search API, page scrape, browser).
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, req domain.Request) (domain.Content, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("fetch strategy %s is not registered", name)
}

// ValidateRequest checks the URL is absolute http(s) and at least one keyword is present.
func ValidateRequest(req domain.Request) error {
	if strings.TrimSpace(req.URL) == "" || len(req.Keywords) == 0 {
		return fmt.Errorf("%w: please provide both the product URL and keywords", domain.ErrInput)
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not a valid http(s) URL", domain.ErrInput, req.URL)
	}
	for _, k := range req.Keywords {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: keywords must not be blank", domain.ErrInput)
		}
	}
	return nil
}

// Truncate cuts text to at most max bytes without splitting a rune.
func Truncate(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.TrimSpace(text[:cut])
}
