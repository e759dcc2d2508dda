package models

import "math"

// SingleBetRequest is the request for a single wager
type SingleBetRequest struct {
	MarketPct float64 `json:"market_pct"`         // % the market thinks the event happens
	YourPct   float64 `json:"your_pct"`           // % you think the selected side wins
	Side      string  `json:"side,omitempty"`     // yes, no
	Odds      string  `json:"odds,omitempty"`     // Optional explicit odds for the selected side
	Format    string  `json:"format,omitempty"`   // decimal, american, fractional
	Bankroll  float64 `json:"bankroll,omitempty"` // Defaults to the service bankroll
}

// OddsQuote is one price rendered in every notation
type OddsQuote struct {
	Decimal            *float64 `json:"decimal"`
	DecimalText        string   `json:"decimal_text"`
	American           string   `json:"american"`
	Fractional         string   `json:"fractional"`
	ImpliedProbability *float64 `json:"implied_probability"`
}

// SingleBetResponse is the Kelly sizing of a single wager.
// Undefined metrics (no valid price) are null.
type SingleBetResponse struct {
	Side           string    `json:"side"`
	OddsSource     string    `json:"odds_source"` // explicit, market
	Odds           OddsQuote `json:"odds"`
	ComplementOdds OddsQuote `json:"complement_odds"`
	FairOdds       OddsQuote `json:"fair_odds"`
	Bankroll       float64   `json:"bankroll"`
	KellyFraction  float64   `json:"kelly_fraction"`
	FullStake      float64   `json:"full_stake"`
	HalfStake      float64   `json:"half_stake"`
	QuarterStake   float64   `json:"quarter_stake"`
	WinPerUnit     *float64  `json:"win_per_unit"`
	EVPerUnit      *float64  `json:"ev_per_unit"`
	ImpliedProb    *float64  `json:"implied_prob"`
	Edge           *float64  `json:"edge"`
	LogGrowthBp    float64   `json:"log_growth_bp"`
	Recommendation string    `json:"recommendation"` // no_bet, optimal, high_risk
	Warnings       []string  `json:"warnings"`
}

// ConvertRequest asks for a price in every notation
type ConvertRequest struct {
	Odds   string `json:"odds"`
	Format string `json:"format,omitempty"` // Empty means auto-detect
}

// ConvertResponse is a parsed price and its complement
type ConvertResponse struct {
	Input      string    `json:"input"`
	Odds       OddsQuote `json:"odds"`
	Complement OddsQuote `json:"complement"`
}

// OutcomeInput is one leg of a mutually exclusive market, in percent
type OutcomeInput struct {
	Name      string  `json:"name"`
	MarketPct float64 `json:"market_pct"`
	YourPct   float64 `json:"your_pct"`
}

// IndependentRequest is the request for an independent multi-outcome allocation
type IndependentRequest struct {
	Outcomes []OutcomeInput `json:"outcomes"`
	Cap      float64        `json:"cap,omitempty"`      // Defaults to the service cap
	Bankroll float64        `json:"bankroll,omitempty"` // Defaults to the service bankroll
	Devig    bool           `json:"devig,omitempty"`    // Normalize market % to 100 first
}

// ExactRequest is the request for the exact multi-outcome allocation.
// Either Probabilities with DecimalOdds (probabilities in 0..1) or Outcomes.
type ExactRequest struct {
	Probabilities []float64      `json:"probabilities,omitempty"`
	DecimalOdds   []float64      `json:"decimal_odds,omitempty"`
	Names         []string       `json:"names,omitempty"`
	Outcomes      []OutcomeInput `json:"outcomes,omitempty"`
	Cap           float64        `json:"cap,omitempty"`
	Bankroll      float64        `json:"bankroll,omitempty"`
}

// AllocationRow is the stake recommendation for one outcome
type AllocationRow struct {
	Name                string   `json:"name"`
	DecimalOdds         *float64 `json:"decimal_odds"`
	KellyFraction       *float64 `json:"kelly_fraction,omitempty"` // Independent Kelly before scaling
	RecommendedFraction float64  `json:"recommended_fraction"`
	Stake               float64  `json:"stake"`
}

// AllocationResponse is the unified response for both allocators
type AllocationResponse struct {
	Method        string          `json:"method"` // independent, exact
	Rows          []AllocationRow `json:"rows"`
	Fractions     []float64       `json:"fractions"`
	TotalFraction float64         `json:"total_fraction"`
	TotalStake    float64         `json:"total_stake"`
	Cap           float64         `json:"cap"`
	Bankroll      float64         `json:"bankroll"`
	SumKelly      *float64        `json:"sum_kelly,omitempty"`     // Independent only
	Scale         *float64        `json:"scale,omitempty"`         // Independent only
	MarketSumPct  *float64        `json:"market_sum_pct,omitempty"` // Independent only
	VigPct        *float64        `json:"vig_pct,omitempty"`       // Independent only
	LogGrowthBp   *float64        `json:"log_growth_bp,omitempty"` // Exact only
	Iterations    int             `json:"iterations,omitempty"`    // Exact only
	Converged     *bool           `json:"converged,omitempty"`     // Exact only
	Warnings      []string        `json:"warnings"`
}

// Float returns a pointer to v, or nil when v is NaN or infinite
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Bool returns a pointer to v
func Bool(v bool) *bool {
	return &v
}
