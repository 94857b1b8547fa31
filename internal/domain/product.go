package domain

import (
	"fmt"
	"strings"
	"time"
)

// Polarity tells which side of the purchase an argument argues for.
type Polarity string

const (
	Pro Polarity = "pro"
	Con Polarity = "con"
)

// Bounds returns the inclusive score range allowed for the polarity.
func (p Polarity) Bounds() (int, int) {
	if p == Con {
		return -100, 0
	}
	return 0, 100
}

// Argument is a single statement produced by a generator together with its sentiment score.
type Argument struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// ArgumentSet is the ordered output of one generator call.
type ArgumentSet struct {
	Polarity  Polarity   `json:"polarity"`
	Arguments []Argument `json:"arguments"`
}

// NewArgumentSet builds a set of the given polarity.
func NewArgumentSet(p Polarity, args ...Argument) ArgumentSet {
	return ArgumentSet{Polarity: p, Arguments: args}
}

// Len reports how many arguments the set holds.
func (s ArgumentSet) Len() int {
	return len(s.Arguments)
}

// Validate checks that every argument has text and a score inside the polarity range.
func (s ArgumentSet) Validate() error {
	if s.Polarity != Pro && s.Polarity != Con {
		return fmt.Errorf("%w: unknown polarity %q", ErrConsistency, s.Polarity)
	}
	lo, hi := s.Polarity.Bounds()
	for i, arg := range s.Arguments {
		if strings.TrimSpace(arg.Text) == "" {
			return fmt.Errorf("%w: %s argument %d has empty text", ErrConsistency, s.Polarity, i)
		}
		if arg.Score < lo || arg.Score > hi {
			return fmt.Errorf("%w: %s argument %d score %d outside [%d,%d]", ErrConsistency, s.Polarity, i, arg.Score, lo, hi)
		}
	}
	return nil
}

// Verdict is the tri-state outcome shown to the user.
type Verdict string

const (
	VerdictBuy         Verdict = "Buy"
	VerdictSkip        Verdict = "Skip"
	VerdictNeutralSkip Verdict = "Neutral-Skip"
)

// Decision is the engine output: verdict, the scores it was derived from and a rationale.
type Decision struct {
	Verdict   Verdict    `json:"verdict"`
	ProScore  int        `json:"proScore"`
	ConScore  int        `json:"conScore"`
	Gap       int        `json:"gap"`
	Rationale string     `json:"rationale"`
	Cited     []Argument `json:"cited"`
}

// Request is a single user submission.
type Request struct {
	URL      string   `json:"url"`
	Keywords []string `json:"keywords"`
}

// ParseKeywords splits a comma-separated keyword string, trimming blanks.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// Content is product text returned by a fetch strategy.
type Content struct {
	URL    string
	Text   string
	Source string
}

// Report is everything one analysis run produced; it is never stored.
type Report struct {
	Request  Request       `json:"request"`
	Source   string        `json:"source"`
	Pros     ArgumentSet   `json:"pros"`
	Cons     ArgumentSet   `json:"cons"`
	Decision Decision      `json:"decision"`
	Elapsed  time.Duration `json:"elapsed"`
}
