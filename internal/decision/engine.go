package decision

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"ProductJudge/internal/domain"
)

// Threshold is the minimum absolute gap that produces a firm Buy or Skip.
const Threshold = 15

// AggregationPolicy selects how an argument set collapses to one score.
type AggregationPolicy string

const (
	// AggregateMean averages scores, keeping the aggregate inside the polarity range.
	AggregateMean AggregationPolicy = "mean"
	// AggregateSum adds scores, so more arguments weigh more.
	AggregateSum AggregationPolicy = "sum"
)

// DefaultAggregation is used when configuration leaves the policy empty.
const DefaultAggregation = AggregateMean

const insufficientInformation = "Insufficient information: no arguments were found for or against the product."

// ParsePolicy resolves a configured policy name.
func ParsePolicy(name string) (AggregationPolicy, error) {
	switch AggregationPolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultAggregation, nil
	case AggregateMean:
		return AggregateMean, nil
	case AggregateSum:
		return AggregateSum, nil
	default:
		return "", fmt.Errorf("unknown aggregation policy %q", name)
	}
}

// Engine turns two argument sets into a verdict. It holds no mutable state.
type Engine struct {
	policy AggregationPolicy
}

// NewEngine builds an engine; an empty policy falls back to DefaultAggregation.
func NewEngine(policy AggregationPolicy) *Engine {
	if policy == "" {
		policy = DefaultAggregation
	}
	return &Engine{policy: policy}
}

// Policy reports the aggregation policy in use.
func (e *Engine) Policy() AggregationPolicy {
	return e.policy
}

// Aggregate collapses a set to one integer score; an empty set yields 0.
func (e *Engine) Aggregate(set domain.ArgumentSet) int {
	if len(set.Arguments) == 0 {
		return 0
	}
	total := 0
	for _, arg := range set.Arguments {
		total += arg.Score
	}
	if e.policy == AggregateSum {
		return total
	}
	return int(math.Round(float64(total) / float64(len(set.Arguments))))
}

// Decide validates both sets, computes the gap and applies the threshold.
func (e *Engine) Decide(pros, cons domain.ArgumentSet) (domain.Decision, error) {
	if pros.Polarity != domain.Pro {
		return domain.Decision{}, fmt.Errorf("%w: pro set has polarity %q", domain.ErrConsistency, pros.Polarity)
	}
	if cons.Polarity != domain.Con {
		return domain.Decision{}, fmt.Errorf("%w: con set has polarity %q", domain.ErrConsistency, cons.Polarity)
	}
	if err := pros.Validate(); err != nil {
		return domain.Decision{}, err
	}
	if err := cons.Validate(); err != nil {
		return domain.Decision{}, err
	}

	proScore := e.Aggregate(pros)
	conScore := e.Aggregate(cons)
	gap := proScore + conScore

	d := domain.Decision{
		Verdict:  Classify(gap),
		ProScore: proScore,
		ConScore: conScore,
		Gap:      gap,
	}
	d.Rationale, d.Cited = rationale(d, pros, cons)
	return d, nil
}

// Classify maps a gap to a verdict.
func Classify(gap int) domain.Verdict {
	switch {
	case gap >= Threshold:
		return domain.VerdictBuy
	case gap <= -Threshold:
		return domain.VerdictSkip
	default:
		return domain.VerdictNeutralSkip
	}
}

func rationale(d domain.Decision, pros, cons domain.ArgumentSet) (string, []domain.Argument) {
	if pros.Len() == 0 && cons.Len() == 0 {
		return insufficientInformation, nil
	}

	topPro, hasPro := strongest(pros)
	topCon, hasCon := strongest(cons)

	var (
		b     strings.Builder
		cited []domain.Argument
	)
	switch d.Verdict {
	case domain.VerdictBuy:
		fmt.Fprintf(&b, "Buy: arguments in favour outweigh the criticism by %d points (pro %d, con %d).", d.Gap, d.ProScore, d.ConScore)
		if hasPro {
			fmt.Fprintf(&b, " Strongest point: %q.", topPro.Text)
			cited = append(cited, topPro)
		}
	case domain.VerdictSkip:
		fmt.Fprintf(&b, "Skip: criticism outweighs the arguments in favour by %d points (pro %d, con %d).", -d.Gap, d.ProScore, d.ConScore)
		if hasCon {
			fmt.Fprintf(&b, " Main concern: %q.", topCon.Text)
			cited = append(cited, topCon)
		}
	default:
		fmt.Fprintf(&b, "Neutral-Skip: the sentiment gap of %d is within ±%d (pro %d, con %d), so the case for buying is not convincing.", d.Gap, Threshold, d.ProScore, d.ConScore)
		if hasPro {
			fmt.Fprintf(&b, " For: %q.", topPro.Text)
			cited = append(cited, topPro)
		}
		if hasCon {
			fmt.Fprintf(&b, " Against: %q.", topCon.Text)
			cited = append(cited, topCon)
		}
	}

	return b.String(), cited
}

// strongest returns the argument with the largest magnitude, earliest first on ties.
func strongest(set domain.ArgumentSet) (domain.Argument, bool) {
	if len(set.Arguments) == 0 {
		return domain.Argument{}, false
	}
	ordered := make([]domain.Argument, len(set.Arguments))
	copy(ordered, set.Arguments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return abs(ordered[i].Score) > abs(ordered[j].Score)
	})
	return ordered[0], true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
