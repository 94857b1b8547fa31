package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ProductJudge/internal/domain"
	"ProductJudge/internal/ports"
)

// Source implements ports.ContentFetcher by walking configured strategies in order.
// The first strategy returning non-empty text wins; later ones are fallbacks only.
type Source struct {
	registry   *Registry
	strategies []string
	maxChars   int
	logger     *slog.Logger
}

var _ ports.ContentFetcher = (*Source)(nil)

// NewSource wires the strategy registry with the configured fallback order.
func NewSource(reg *Registry, strategies []string, maxChars int, log *slog.Logger) *Source {
	return &Source{
		registry:   reg,
		strategies: strategies,
		maxChars:   maxChars,
		logger:     log,
	}
}

// Fetch returns product text or an error wrapping domain.ErrInput / domain.ErrFetch.
func (s *Source) Fetch(ctx context.Context, req domain.Request) (domain.Content, error) {
	if err := ValidateRequest(req); err != nil {
		return domain.Content{}, err
	}
	if s.registry == nil || len(s.strategies) == 0 {
		return domain.Content{}, fmt.Errorf("%w: no fetch strategies configured", domain.ErrFetch)
	}

	var failures []string
	for _, name := range s.strategies {
		if err := ctx.Err(); err != nil {
			return domain.Content{}, fmt.Errorf("%w: %v", domain.ErrFetch, err)
		}

		strategy, err := s.registry.Resolve(name)
		if err != nil {
			return domain.Content{}, fmt.Errorf("%w: %v", domain.ErrFetch, err)
		}

		s.debug("try strategy", "strategy", name, "url", req.URL)
		content, err := strategy.Fetch(ctx, req)
		if err != nil {
			if errors.Is(err, domain.ErrInput) {
				return domain.Content{}, err
			}
			s.warn("strategy failed", "strategy", name, "error", err)
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		content.Text = Truncate(strings.TrimSpace(content.Text), s.maxChars)
		if content.Text == "" {
			s.warn("strategy returned no content", "strategy", name)
			failures = append(failures, fmt.Sprintf("%s: no content", name))
			continue
		}
		if content.Source == "" {
			content.Source = name
		}
		if content.URL == "" {
			content.URL = req.URL
		}

		s.debug("strategy produced content", "strategy", name, "chars", len(content.Text))
		return content, nil
	}

	return domain.Content{}, fmt.Errorf("%w: %s", domain.ErrFetch, strings.Join(failures, "; "))
}

func (s *Source) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Source) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
