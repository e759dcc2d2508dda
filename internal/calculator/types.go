package calculator

import (
	"fmt"
	"math"
	"strings"

	"github.com/teilomillet/edgerunner/pkg/oddsmath"
)

const (
	// DefaultStakeCap bounds the total fraction of bankroll committed across all legs
	DefaultStakeCap = 1.0

	// probabilityClamp keeps market probabilities away from 0 and 1 before inversion
	probabilityClamp = 1e-9

	// highRiskFraction is the full-Kelly fraction above which a bet is flagged
	highRiskFraction = 0.25
)

// Recommendation labels for a single bet
const (
	RecommendNoBet    = "no_bet"
	RecommendHighRisk = "high_risk"
	RecommendOptimal  = "optimal"
)

// BetSide selects which side of a binary event is being backed
type BetSide int

const (
	SideEvent BetSide = iota
	SideOpposite
)

func (s BetSide) String() string {
	if s == SideOpposite {
		return "no"
	}
	return "yes"
}

// Toggle returns the other side
func (s BetSide) Toggle() BetSide {
	if s == SideOpposite {
		return SideEvent
	}
	return SideOpposite
}

// ParseSide reads "yes"/"event" or "no"/"opposite"
func ParseSide(name string) (BetSide, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "yes", "event", "on_event":
		return SideEvent, nil
	case "no", "opposite", "on_opposite":
		return SideOpposite, nil
	default:
		return SideEvent, fmt.Errorf("unknown bet side %q", name)
	}
}

// Outcome is one leg of a mutually exclusive set, with probabilities in percent
type Outcome struct {
	Name      string
	MarketPct float64
	YourPct   float64
}

// kellyFraction is the closed-form single-bet Kelly stake clamped to [0, 1].
// Non-positive net odds are never worth a stake.
func kellyFraction(b, p float64) float64 {
	if !(b > 0) {
		return 0
	}
	q := 1.0 - p
	return clamp((b*p-q)/b, 0, 1)
}

// clamp bounds v to [lo, hi]; NaN collapses to lo
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// pctToProbability converts a percentage to a probability in [0, 1]
func pctToProbability(pct float64) float64 {
	return clamp(pct/100.0, 0, 1)
}

// marketDecimal derives no-vig decimal odds from a market percentage
func marketDecimal(marketPct float64) float64 {
	d, _ := oddsmath.ProbabilityToDecimal(clamp(marketPct/100.0, probabilityClamp, 1.0-probabilityClamp))
	return d
}

// normalizeCap brings a stake cap into [0, 1]; NaN falls back to the default
func normalizeCap(stakeCap float64) float64 {
	if math.IsNaN(stakeCap) {
		return DefaultStakeCap
	}
	return clamp(stakeCap, 0, 1)
}
