package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"ProductJudge/internal/domain"
	"ProductJudge/internal/ports"
)

// ArgumentGenerator implements ports.ArgumentGenerator for one polarity on top of a ChatClient.
type ArgumentGenerator struct {
	chat     ports.ChatClient
	polarity domain.Polarity
	maxArgs  int
	logger   *slog.Logger
}

var _ ports.ArgumentGenerator = (*ArgumentGenerator)(nil)

// NewArgumentGenerator builds a pro or con generator; maxArgs <= 0 means 5.
func NewArgumentGenerator(chat ports.ChatClient, p domain.Polarity, maxArgs int, log *slog.Logger) *ArgumentGenerator {
	if maxArgs <= 0 {
		maxArgs = 5
	}
	return &ArgumentGenerator{chat: chat, polarity: p, maxArgs: maxArgs, logger: log}
}

// Polarity reports which side this generator argues.
func (g *ArgumentGenerator) Polarity() domain.Polarity {
	return g.polarity
}

// Generate issues one backend call. Scores are passed through unchanged; range checks belong to the decision engine.
func (g *ArgumentGenerator) Generate(ctx context.Context, text string) (domain.ArgumentSet, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ArgumentSet{}, fmt.Errorf("%w: product text is empty", domain.ErrInput)
	}
	if g.chat == nil {
		return domain.ArgumentSet{}, fmt.Errorf("%w: reasoning backend is not configured", domain.ErrGeneration)
	}

	reply, err := g.chat.Complete(ctx, argumentSystemPrompt(g.polarity, g.maxArgs), argumentUserPrompt(text))
	if err != nil {
		return domain.ArgumentSet{}, fmt.Errorf("%w: %s arguments: %w", domain.ErrGeneration, g.polarity, err)
	}

	set, err := parseArguments(reply, g.polarity)
	if err != nil {
		return domain.ArgumentSet{}, fmt.Errorf("%w: %s arguments: %v", domain.ErrGeneration, g.polarity, err)
	}
	if len(set.Arguments) > g.maxArgs {
		set.Arguments = set.Arguments[:g.maxArgs]
	}

	if g.logger != nil {
		g.logger.Debug("arguments generated", "polarity", g.polarity, "backend", g.chat.Name(), "count", len(set.Arguments))
	}
	return set, nil
}

func parseArguments(reply string, p domain.Polarity) (domain.ArgumentSet, error) {
	content := cleanJSONResponse(reply)

	var parsed struct {
		Arguments *[]struct {
			Text  string          `json:"text"`
			Score json.RawMessage `json:"score"`
		} `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return domain.ArgumentSet{}, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}
	if parsed.Arguments == nil {
		return domain.ArgumentSet{}, fmt.Errorf("response has no arguments field, content: %s", content)
	}

	set := domain.NewArgumentSet(p)
	for i, raw := range *parsed.Arguments {
		score, err := parseScore(raw.Score)
		if err != nil {
			return domain.ArgumentSet{}, fmt.Errorf("argument %d: %w", i, err)
		}
		set.Arguments = append(set.Arguments, domain.Argument{
			Text:  strings.TrimSpace(raw.Text),
			Score: score,
		})
	}
	return set, nil
}

// parseScore accepts integers, floats with no fractional part and quoted numbers.
func parseScore(raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(strings.Trim(string(raw), `"`))
	if s == "" {
		return 0, fmt.Errorf("missing score")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid score %s", raw)
	}
	return int(f), nil
}
