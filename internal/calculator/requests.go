package calculator

import (
	"fmt"
	"math"

	"github.com/teilomillet/edgerunner/pkg/models"
	"github.com/teilomillet/edgerunner/pkg/oddsmath"
)

// Defaults fill request fields left at zero
type Defaults struct {
	Bankroll float64
	StakeCap float64
}

func (d Defaults) bankroll(requested float64) (float64, error) {
	if requested == 0 {
		requested = d.Bankroll
	}
	if !(requested > 0) || math.IsInf(requested, 1) {
		return 0, fmt.Errorf("bankroll must be positive")
	}
	return requested, nil
}

func (d Defaults) stakeCap(requested float64) (float64, error) {
	if requested == 0 {
		requested = d.StakeCap
	}
	if requested == 0 {
		requested = DefaultStakeCap
	}
	if !(requested > 0 && requested <= 1) {
		return 0, fmt.Errorf("cap must be between 0 and 1")
	}
	return requested, nil
}

// Quote renders decimal odds in every notation
func Quote(decimal float64) models.OddsQuote {
	q := models.OddsQuote{
		DecimalText: oddsmath.FormatOdds(decimal, oddsmath.Decimal),
		American:    oddsmath.FormatOdds(decimal, oddsmath.American),
		Fractional:  oddsmath.FormatOdds(decimal, oddsmath.Fractional),
	}
	if implied, err := oddsmath.DecimalToImpliedProbability(decimal); err == nil {
		q.Decimal = models.Float(decimal)
		q.ImpliedProbability = models.Float(implied)
	}
	return q
}

func singleBetInput(req models.SingleBetRequest) (SingleBetInput, error) {
	format, err := oddsmath.ParseFormat(req.Format)
	if err != nil {
		return SingleBetInput{}, fmt.Errorf("invalid format: %w", err)
	}
	side, err := ParseSide(req.Side)
	if err != nil {
		return SingleBetInput{}, err
	}

	return SingleBetInput{
		MarketPct: req.MarketPct,
		YourPct:   req.YourPct,
		Side:      side,
		OddsText:  req.Odds,
		Format:    format,
		Bankroll:  req.Bankroll,
	}, nil
}

// CalculateSingleBet sizes a single wager described by a request
func CalculateSingleBet(req models.SingleBetRequest, defaults Defaults) (*models.SingleBetResponse, error) {
	bankroll, err := defaults.bankroll(req.Bankroll)
	if err != nil {
		return nil, err
	}
	req.Bankroll = bankroll

	in, err := singleBetInput(req)
	if err != nil {
		return nil, err
	}

	r, source := in.Evaluate()

	warnings := []string{}
	if source == OddsFromMarket && req.Odds != "" {
		warnings = append(warnings, fmt.Sprintf("Could not read %q as %s odds - using market probability (no vig)", req.Odds, in.Format))
	}
	switch r.Recommendation() {
	case RecommendNoBet:
		warnings = append(warnings, "No betting edge detected. Kelly suggests no bet.")
	case RecommendHighRisk:
		warnings = append(warnings, "Kelly fraction is above 25% - consider Half or Quarter Kelly to reduce volatility")
	}

	return &models.SingleBetResponse{
		Side:           in.Side.String(),
		OddsSource:     string(source),
		Odds:           Quote(r.DecimalOdds),
		ComplementOdds: Quote(oddsmath.Complement(r.DecimalOdds)),
		FairOdds:       Quote(r.FairOdds),
		Bankroll:       bankroll,
		KellyFraction:  r.Fraction,
		FullStake:      r.FullStake,
		HalfStake:      r.HalfStake,
		QuarterStake:   r.QuarterStake,
		WinPerUnit:     models.Float(r.NetOdds),
		EVPerUnit:      models.Float(r.EV),
		ImpliedProb:    models.Float(r.ImpliedProb),
		Edge:           models.Float(r.Edge),
		LogGrowthBp:    r.LogGrowthBp,
		Recommendation: r.Recommendation(),
		Warnings:       warnings,
	}, nil
}

// FlipSingleBet switches the backed side of a request, mirroring your
// probability and replacing explicit odds with the complementary price
func FlipSingleBet(req models.SingleBetRequest) (*models.SingleBetRequest, error) {
	in, err := singleBetInput(req)
	if err != nil {
		return nil, err
	}

	flipped := in.Flip()
	out := req
	out.Side = flipped.Side.String()
	out.YourPct = flipped.YourPct
	out.Odds = flipped.OddsText
	out.Format = flipped.Format.String()
	return &out, nil
}

// ConvertOdds parses a price, auto-detecting the notation when none is given
func ConvertOdds(req models.ConvertRequest) (*models.ConvertResponse, error) {
	var (
		d   float64
		err error
	)
	if req.Format == "" {
		var ok bool
		if d, ok = oddsmath.ParseAny(req.Odds); !ok {
			return nil, fmt.Errorf("could not read %q as odds: %w", req.Odds, oddsmath.ErrInvalidOdds)
		}
	} else {
		format, ferr := oddsmath.ParseFormat(req.Format)
		if ferr != nil {
			return nil, fmt.Errorf("invalid format: %w", ferr)
		}
		if d, err = oddsmath.Parse(req.Odds, format); err != nil {
			return nil, fmt.Errorf("could not read odds: %w", err)
		}
	}

	return &models.ConvertResponse{
		Input:      req.Odds,
		Odds:       Quote(d),
		Complement: Quote(oddsmath.Complement(d)),
	}, nil
}

func toOutcomes(inputs []models.OutcomeInput) []Outcome {
	outcomes := make([]Outcome, len(inputs))
	for i, o := range inputs {
		outcomes[i] = Outcome{Name: outcomeName(o.Name, i), MarketPct: o.MarketPct, YourPct: o.YourPct}
	}
	return outcomes
}

func outcomeName(name string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("O%d", i+1)
}

// CalculateIndependent runs the independent Kelly allocator for a request
func CalculateIndependent(req models.IndependentRequest, defaults Defaults) (*models.AllocationResponse, error) {
	stakeCap, err := defaults.stakeCap(req.Cap)
	if err != nil {
		return nil, err
	}
	bankroll, err := defaults.bankroll(req.Bankroll)
	if err != nil {
		return nil, err
	}

	outcomes := toOutcomes(req.Outcomes)
	marketProbs := make([]float64, len(outcomes))
	for i, o := range outcomes {
		marketProbs[i] = o.MarketPct / 100.0
	}
	vig := oddsmath.CalculateVigPercentage(marketProbs)

	warnings := []string{}
	if req.Devig {
		fair, err := oddsmath.RemoveVigProportional(marketProbs)
		if err != nil {
			return nil, fmt.Errorf("error removing vig: %w", err)
		}
		for i := range outcomes {
			outcomes[i].MarketPct = fair[i] * 100.0
		}
	}

	r := IndependentAllocate(outcomes, stakeCap)

	if r.MarketSumWarning {
		warnings = append(warnings, fmt.Sprintf("Market probabilities sum to %.1f%% (should be ~100%%)", r.MarketSumPct))
	}
	if r.Scale < 1 {
		warnings = append(warnings, fmt.Sprintf("Kelly stakes sum to %.1f%% - scaled by %.3f to fit the %.0f%% cap", r.SumKelly*100, r.Scale, stakeCap*100))
	}
	if len(outcomes) > 1 {
		warnings = append(warnings, "Independent Kelly ignores that only one outcome can win - use the exact method for joint sizing")
	}

	resp := &models.AllocationResponse{
		Method:       "independent",
		Rows:         make([]models.AllocationRow, len(r.Rows)),
		Fractions:    r.Fractions(),
		Cap:          stakeCap,
		Bankroll:     bankroll,
		SumKelly:     models.Float(r.SumKelly),
		Scale:        models.Float(r.Scale),
		MarketSumPct: models.Float(r.MarketSumPct),
		VigPct:       models.Float(vig),
		Warnings:     warnings,
	}
	for i, row := range r.Rows {
		resp.Rows[i] = models.AllocationRow{
			Name:                row.Name,
			DecimalOdds:         models.Float(row.DecimalOdds),
			KellyFraction:       models.Float(row.Fraction),
			RecommendedFraction: row.Recommended,
			Stake:               bankroll * row.Recommended,
		}
		resp.TotalFraction += row.Recommended
	}
	resp.TotalStake = bankroll * resp.TotalFraction

	return resp, nil
}

// CalculateExact runs the exact log-growth allocator for a request. Outcomes,
// when given, are converted with your probability and no-vig market odds.
func CalculateExact(req models.ExactRequest, defaults Defaults) (*models.AllocationResponse, error) {
	stakeCap, err := defaults.stakeCap(req.Cap)
	if err != nil {
		return nil, err
	}
	bankroll, err := defaults.bankroll(req.Bankroll)
	if err != nil {
		return nil, err
	}

	probs, odds, names := req.Probabilities, req.DecimalOdds, req.Names
	if len(req.Outcomes) > 0 {
		probs = make([]float64, len(req.Outcomes))
		odds = make([]float64, len(req.Outcomes))
		names = make([]string, len(req.Outcomes))
		for i, o := range req.Outcomes {
			probs[i] = pctToProbability(o.YourPct)
			odds[i] = marketDecimal(o.MarketPct)
			names[i] = o.Name
		}
	}

	resp := &models.AllocationResponse{
		Method:    "exact",
		Rows:      []models.AllocationRow{},
		Fractions: []float64{},
		Cap:       stakeCap,
		Bankroll:  bankroll,
		Warnings:  []string{},
	}

	pr, ok := NewProblem(probs, odds, stakeCap)
	if !ok {
		if len(probs) != len(odds) {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%d probabilities but %d prices - nothing allocated", len(probs), len(odds)))
		}
		return resp, nil
	}

	if total := sum(pr.probs); total > 1+1e-6 {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("Probabilities sum to %.1f%% - outcomes should be mutually exclusive", total*100))
	}

	sol := pr.Optimize()
	if !sol.Converged {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("Optimizer stopped at the %d iteration budget", MaxIterations))
	}

	resp.Fractions = sol.Fractions
	resp.Rows = make([]models.AllocationRow, len(sol.Fractions))
	for i, f := range sol.Fractions {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		resp.Rows[i] = models.AllocationRow{
			Name:                outcomeName(name, i),
			DecimalOdds:         models.Float(odds[i]),
			RecommendedFraction: f,
			Stake:               bankroll * f,
		}
		resp.TotalFraction += f
	}
	resp.TotalStake = bankroll * resp.TotalFraction
	resp.LogGrowthBp = models.Float(sol.LogGrowth * 10000)
	resp.Iterations = sol.Iterations
	resp.Converged = models.Bool(sol.Converged)

	return resp, nil
}
