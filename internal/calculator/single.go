package calculator

import (
	"math"

	"github.com/teilomillet/edgerunner/pkg/oddsmath"
)

// SingleBetResult holds the sizing and pricing metrics of one wager.
// Metrics that depend on a valid price are NaN when the odds are not above 1.0.
type SingleBetResult struct {
	Probability  float64 // your probability for the backed side, in [0, 1]
	DecimalOdds  float64
	NetOdds      float64 // b = d - 1, profit per unit staked
	Fraction     float64 // full Kelly fraction of bankroll
	FullStake    float64
	HalfStake    float64
	QuarterStake float64
	EV           float64 // expected profit per unit staked
	ImpliedProb  float64
	Edge         float64
	FairOdds     float64 // 1/p, +Inf when p = 0
	LogGrowthBp  float64 // expected log growth at full Kelly, basis points
}

// Recommendation buckets the Kelly fraction into no bet, optimal or high risk
func (r SingleBetResult) Recommendation() string {
	switch {
	case r.Fraction <= 0:
		return RecommendNoBet
	case r.Fraction > highRiskFraction:
		return RecommendHighRisk
	default:
		return RecommendOptimal
	}
}

// HasEdge reports whether the backed side is priced better than your probability
func (r SingleBetResult) HasEdge() bool {
	return r.Edge > 0
}

// SingleBet sizes one wager with the Kelly criterion.
// yourProbabilityPct is in percent and must already refer to the side the odds price.
func SingleBet(yourProbabilityPct, decimalOdds, bankroll float64) SingleBetResult {
	p := pctToProbability(yourProbabilityPct)

	fair := math.Inf(1)
	if p > 0 {
		fair = 1.0 / p
	}

	if !oddsmath.IsValidDecimal(decimalOdds) {
		nan := math.NaN()
		return SingleBetResult{
			Probability: p,
			DecimalOdds: decimalOdds,
			NetOdds:     nan,
			EV:          nan,
			ImpliedProb: nan,
			Edge:        nan,
			FairOdds:    fair,
		}
	}

	b := decimalOdds - 1.0
	q := 1.0 - p
	implied := 1.0 / decimalOdds
	edge := p - implied

	// (b·p - q) and p - 1/d can disagree in sign by one ulp at zero edge
	f := 0.0
	if edge > 0 {
		f = kellyFraction(b, p)
	}

	return SingleBetResult{
		Probability:  p,
		DecimalOdds:  decimalOdds,
		NetOdds:      b,
		Fraction:     f,
		FullStake:    bankroll * f,
		HalfStake:    bankroll * f * 0.5,
		QuarterStake: bankroll * f * 0.25,
		EV:           p*b - q,
		ImpliedProb:  implied,
		Edge:         edge,
		FairOdds:     fair,
		LogGrowthBp:  logGrowth(p, b, f) * 10000,
	}
}

// logGrowth is the expected log growth of a single bet staking fraction f
func logGrowth(p, b, f float64) float64 {
	if f <= 0 {
		return 0
	}
	g := p * math.Log1p(f*b)
	if p < 1 {
		g += (1 - p) * math.Log1p(-f)
	}
	return g
}

// OddsSource tells where the decimal odds of a single bet came from
type OddsSource string

const (
	OddsFromText   OddsSource = "explicit"
	OddsFromMarket OddsSource = "market"
)

// SingleBetInput is the raw state of a single bet as a caller holds it.
// Methods return new values and never mutate the receiver.
type SingleBetInput struct {
	MarketPct float64 // market probability that the event happens, percent
	YourPct   float64 // your probability for the selected side, percent
	Side      BetSide
	OddsText  string // optional explicit odds for the selected side
	Format    oddsmath.Format
	Bankroll  float64
}

// ResolveOdds reads OddsText in Format. When the text does not parse it falls
// back to no-vig odds derived from the market probability of the selected side.
func (in SingleBetInput) ResolveOdds() (float64, OddsSource) {
	if d, err := oddsmath.Parse(in.OddsText, in.Format); err == nil {
		return d, OddsFromText
	}

	priced := clamp(in.MarketPct/100.0, probabilityClamp, 1.0-probabilityClamp)
	if in.Side == SideOpposite {
		priced = 1.0 - priced
	}
	d, _ := oddsmath.ProbabilityToDecimal(priced)
	return d, OddsFromMarket
}

// Evaluate resolves the odds and sizes the bet
func (in SingleBetInput) Evaluate() (SingleBetResult, OddsSource) {
	d, source := in.ResolveOdds()
	return SingleBet(in.YourPct, d, in.Bankroll), source
}

// Flip switches the backed side. Your probability is mirrored and explicit odds
// are replaced by the complementary price so both keep describing the same side.
func (in SingleBetInput) Flip() SingleBetInput {
	out := in
	out.Side = in.Side.Toggle()
	out.YourPct = 100.0 - in.YourPct

	if d, ok := in.explicitOdds(); ok && d > 1.0+probabilityClamp {
		out.OddsText = oddsmath.FormatOdds(oddsmath.Complement(d), in.Format)
	}
	return out
}

// ConvertFormat re-renders explicit odds in another notation. Text that does
// not parse is kept as typed.
func (in SingleBetInput) ConvertFormat(format oddsmath.Format) SingleBetInput {
	out := in
	out.Format = format
	if d, ok := in.explicitOdds(); ok {
		out.OddsText = oddsmath.FormatOdds(d, format)
	}
	return out
}

// explicitOdds reads OddsText in its declared format first, then in any format
func (in SingleBetInput) explicitOdds() (float64, bool) {
	if d, err := oddsmath.Parse(in.OddsText, in.Format); err == nil {
		return d, true
	}
	return oddsmath.ParseAny(in.OddsText)
}
