package calculator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teilomillet/edgerunner/internal/calculator"
	"github.com/teilomillet/edgerunner/pkg/models"
	"github.com/teilomillet/edgerunner/pkg/oddsmath"
)

var testDefaults = calculator.Defaults{Bankroll: 1000, StakeCap: 1.0}

func TestCalculateSingleBet_ExplicitOdds(t *testing.T) {
	resp, err := calculator.CalculateSingleBet(models.SingleBetRequest{
		MarketPct: 50,
		YourPct:   60,
		Odds:      "2.0",
	}, testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "yes", resp.Side)
	assert.Equal(t, "explicit", resp.OddsSource)
	assert.Equal(t, 1000.0, resp.Bankroll)
	assert.InDelta(t, 0.2, resp.KellyFraction, 1e-12)
	assert.InDelta(t, 200.0, resp.FullStake, 1e-9)
	assert.InDelta(t, 100.0, resp.HalfStake, 1e-9)
	assert.InDelta(t, 50.0, resp.QuarterStake, 1e-9)
	assert.Equal(t, calculator.RecommendOptimal, resp.Recommendation)
	assert.Empty(t, resp.Warnings)

	assert.Equal(t, "2.000", resp.Odds.DecimalText)
	assert.Equal(t, "+100", resp.Odds.American)
	assert.Equal(t, "1/1", resp.Odds.Fractional)
	require.NotNil(t, resp.Odds.ImpliedProbability)
	assert.InDelta(t, 0.5, *resp.Odds.ImpliedProbability, 1e-12)
	assert.Equal(t, "2.000", resp.ComplementOdds.DecimalText)
	assert.Equal(t, "1.667", resp.FairOdds.DecimalText)

	require.NotNil(t, resp.Edge)
	assert.InDelta(t, 0.1, *resp.Edge, 1e-12)
	require.NotNil(t, resp.EVPerUnit)
	assert.InDelta(t, 0.2, *resp.EVPerUnit, 1e-12)
}

func TestCalculateSingleBet_DefaultBankroll(t *testing.T) {
	resp, err := calculator.CalculateSingleBet(models.SingleBetRequest{
		MarketPct: 50,
		YourPct:   60,
		Odds:      "+100",
		Format:    "american",
	}, calculator.Defaults{Bankroll: 500})
	require.NoError(t, err)

	assert.Equal(t, 500.0, resp.Bankroll)
	assert.InDelta(t, 100.0, resp.FullStake, 1e-9)
}

func TestCalculateSingleBet_MarketFallback(t *testing.T) {
	resp, err := calculator.CalculateSingleBet(models.SingleBetRequest{
		MarketPct: 60,
		YourPct:   55,
		Odds:      "abc",
	}, testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "market", resp.OddsSource)
	assert.Equal(t, calculator.RecommendNoBet, resp.Recommendation)
	assert.Equal(t, 0.0, resp.KellyFraction)
	assert.Len(t, resp.Warnings, 2)
	require.NotNil(t, resp.Edge)
	assert.Less(t, *resp.Edge, 0.0)
}

func TestCalculateSingleBet_OppositeSide(t *testing.T) {
	resp, err := calculator.CalculateSingleBet(models.SingleBetRequest{
		MarketPct: 60,
		YourPct:   50,
		Side:      "no",
	}, testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "no", resp.Side)
	require.NotNil(t, resp.Odds.Decimal)
	assert.InDelta(t, 2.5, *resp.Odds.Decimal, 1e-9)
	// p = 0.5, b = 1.5: f = (0.75 - 0.5) / 1.5
	assert.InDelta(t, 1.0/6.0, resp.KellyFraction, 1e-9)
}

func TestCalculateSingleBet_ZeroProbabilityHasNoFairOdds(t *testing.T) {
	resp, err := calculator.CalculateSingleBet(models.SingleBetRequest{
		MarketPct: 50,
		YourPct:   0,
		Odds:      "3.0",
	}, testDefaults)
	require.NoError(t, err)

	assert.Nil(t, resp.FairOdds.Decimal)
	assert.Equal(t, oddsmath.Placeholder, resp.FairOdds.DecimalText)
	assert.Equal(t, 0.0, resp.KellyFraction)
}

func TestCalculateSingleBet_InvalidRequests(t *testing.T) {
	tests := []struct {
		name     string
		req      models.SingleBetRequest
		defaults calculator.Defaults
	}{
		{"unknown format", models.SingleBetRequest{YourPct: 50, Format: "klingon"}, testDefaults},
		{"unknown side", models.SingleBetRequest{YourPct: 50, Side: "maybe"}, testDefaults},
		{"negative bankroll", models.SingleBetRequest{YourPct: 50, Bankroll: -5}, testDefaults},
		{"no bankroll at all", models.SingleBetRequest{YourPct: 50}, calculator.Defaults{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calculator.CalculateSingleBet(tt.req, tt.defaults)
			assert.Error(t, err)
		})
	}
}

func TestFlipSingleBet(t *testing.T) {
	flipped, err := calculator.FlipSingleBet(models.SingleBetRequest{
		MarketPct: 60,
		YourPct:   70,
		Side:      "yes",
		Odds:      "2.5",
		Format:    "decimal",
		Bankroll:  250,
	})
	require.NoError(t, err)

	assert.Equal(t, "no", flipped.Side)
	assert.InDelta(t, 30.0, flipped.YourPct, 1e-12)
	assert.Equal(t, "1.667", flipped.Odds)
	assert.Equal(t, "decimal", flipped.Format)
	assert.Equal(t, 60.0, flipped.MarketPct)
	assert.Equal(t, 250.0, flipped.Bankroll)

	back, err := calculator.FlipSingleBet(*flipped)
	require.NoError(t, err)
	assert.Equal(t, "yes", back.Side)
	assert.Equal(t, "2.499", back.Odds)

	_, err = calculator.FlipSingleBet(models.SingleBetRequest{Side: "sideways"})
	assert.Error(t, err)
}

func TestConvertOdds(t *testing.T) {
	resp, err := calculator.ConvertOdds(models.ConvertRequest{Odds: "+150", Format: "american"})
	require.NoError(t, err)

	require.NotNil(t, resp.Odds.Decimal)
	assert.InDelta(t, 2.5, *resp.Odds.Decimal, 1e-12)
	assert.Equal(t, "3/2", resp.Odds.Fractional)
	assert.Equal(t, "+150", resp.Odds.American)
	assert.Equal(t, "1.667", resp.Complement.DecimalText)
	assert.Equal(t, "-150", resp.Complement.American)

	resp, err = calculator.ConvertOdds(models.ConvertRequest{Odds: "5/2"})
	require.NoError(t, err)
	require.NotNil(t, resp.Odds.Decimal)
	assert.InDelta(t, 3.5, *resp.Odds.Decimal, 1e-12)
}

func TestConvertOdds_Errors(t *testing.T) {
	_, err := calculator.ConvertOdds(models.ConvertRequest{Odds: "abc"})
	assert.ErrorIs(t, err, oddsmath.ErrInvalidOdds)

	_, err = calculator.ConvertOdds(models.ConvertRequest{Odds: "abc", Format: "american"})
	assert.ErrorIs(t, err, oddsmath.ErrInvalidOdds)

	_, err = calculator.ConvertOdds(models.ConvertRequest{Odds: "0.8", Format: "decimal"})
	assert.ErrorIs(t, err, oddsmath.ErrInvalidOdds)

	_, err = calculator.ConvertOdds(models.ConvertRequest{Odds: "2.0", Format: "roman"})
	assert.ErrorIs(t, err, oddsmath.ErrUnknownFormat)
}

func TestCalculateIndependent(t *testing.T) {
	resp, err := calculator.CalculateIndependent(models.IndependentRequest{
		Outcomes: []models.OutcomeInput{
			{Name: "Home", MarketPct: 50, YourPct: 60},
			{MarketPct: 50, YourPct: 40},
		},
	}, testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "independent", resp.Method)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "Home", resp.Rows[0].Name)
	assert.Equal(t, "O2", resp.Rows[1].Name)
	assert.InDelta(t, 0.2, resp.Rows[0].RecommendedFraction, 1e-12)
	assert.InDelta(t, 200.0, resp.Rows[0].Stake, 1e-9)
	assert.Equal(t, 0.0, resp.Rows[1].RecommendedFraction)
	assert.InDelta(t, 0.2, resp.TotalFraction, 1e-12)
	assert.InDelta(t, 200.0, resp.TotalStake, 1e-9)
	assert.Equal(t, []float64{resp.Rows[0].RecommendedFraction, 0}, resp.Fractions)

	require.NotNil(t, resp.Scale)
	assert.Equal(t, 1.0, *resp.Scale)
	require.NotNil(t, resp.VigPct)
	assert.InDelta(t, 0.0, *resp.VigPct, 1e-9)
	assert.Zero(t, resp.Iterations)
	assert.Nil(t, resp.Converged)
	assert.Nil(t, resp.LogGrowthBp)
}

func TestCalculateIndependent_ScalesToCap(t *testing.T) {
	resp, err := calculator.CalculateIndependent(models.IndependentRequest{
		Outcomes: []models.OutcomeInput{
			{Name: "A", MarketPct: 50, YourPct: 60},
			{Name: "B", MarketPct: 50, YourPct: 60},
		},
		Cap: 0.2,
	}, testDefaults)
	require.NoError(t, err)

	require.NotNil(t, resp.SumKelly)
	assert.InDelta(t, 0.4, *resp.SumKelly, 1e-12)
	require.NotNil(t, resp.Scale)
	assert.InDelta(t, 0.5, *resp.Scale, 1e-12)
	assert.InDelta(t, 0.2, resp.TotalFraction, 1e-12)
	assert.Equal(t, 0.2, resp.Cap)
}

func TestCalculateIndependent_Devig(t *testing.T) {
	resp, err := calculator.CalculateIndependent(models.IndependentRequest{
		Outcomes: []models.OutcomeInput{
			{Name: "A", MarketPct: 55, YourPct: 60},
			{Name: "B", MarketPct: 55, YourPct: 40},
		},
		Devig: true,
	}, testDefaults)
	require.NoError(t, err)

	require.NotNil(t, resp.VigPct)
	assert.InDelta(t, 10.0, *resp.VigPct, 1e-9)
	require.NotNil(t, resp.Rows[0].DecimalOdds)
	assert.InDelta(t, 2.0, *resp.Rows[0].DecimalOdds, 1e-9)
	assert.InDelta(t, 0.2, resp.Rows[0].RecommendedFraction, 1e-9)

	_, err = calculator.CalculateIndependent(models.IndependentRequest{
		Outcomes: []models.OutcomeInput{{Name: "A", MarketPct: 55, YourPct: 60}},
		Devig:    true,
	}, testDefaults)
	assert.Error(t, err)
}

func TestCalculateIndependent_MarketSumWarning(t *testing.T) {
	resp, err := calculator.CalculateIndependent(models.IndependentRequest{
		Outcomes: []models.OutcomeInput{
			{Name: "A", MarketPct: 60, YourPct: 50},
			{Name: "B", MarketPct: 50, YourPct: 50},
		},
	}, testDefaults)
	require.NoError(t, err)

	require.NotNil(t, resp.MarketSumPct)
	assert.InDelta(t, 110.0, *resp.MarketSumPct, 1e-9)
	assert.Contains(t, resp.Warnings, "Market probabilities sum to 110.0% (should be ~100%)")
}

func TestCalculateIndependent_InvalidCap(t *testing.T) {
	for _, c := range []float64{-0.1, 1.5} {
		_, err := calculator.CalculateIndependent(models.IndependentRequest{Cap: c}, testDefaults)
		assert.Error(t, err, "cap %v", c)
	}
}

func TestCalculateExact_FromProbabilities(t *testing.T) {
	resp, err := calculator.CalculateExact(models.ExactRequest{
		Probabilities: []float64{0.6},
		DecimalOdds:   []float64{2.0},
	}, testDefaults)
	require.NoError(t, err)

	assert.Equal(t, "exact", resp.Method)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "O1", resp.Rows[0].Name)
	assert.InDelta(t, 0.2, resp.Rows[0].RecommendedFraction, 1e-3)
	assert.InDelta(t, 1000*resp.Rows[0].RecommendedFraction, resp.Rows[0].Stake, 1e-9)
	assert.Nil(t, resp.Rows[0].KellyFraction)
	assert.Greater(t, resp.Iterations, 0)
	require.NotNil(t, resp.Converged)
	require.NotNil(t, resp.LogGrowthBp)
	assert.Nil(t, resp.Scale)
}

func TestCalculateExact_FromOutcomes(t *testing.T) {
	resp, err := calculator.CalculateExact(models.ExactRequest{
		Outcomes: []models.OutcomeInput{
			{Name: "Home", MarketPct: 50, YourPct: 60},
			{Name: "Away", MarketPct: 50, YourPct: 40},
		},
		Bankroll: 100,
	}, testDefaults)
	require.NoError(t, err)

	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "Home", resp.Rows[0].Name)
	assert.Equal(t, "Away", resp.Rows[1].Name)
	assert.LessOrEqual(t, resp.TotalFraction, 1.0+1e-9)
	assert.InDelta(t, 100*resp.TotalFraction, resp.TotalStake, 1e-9)
	require.NotNil(t, resp.LogGrowthBp)
	assert.InDelta(t, 201.35, *resp.LogGrowthBp, 0.5)
}

func TestCalculateExact_ShapeMismatch(t *testing.T) {
	resp, err := calculator.CalculateExact(models.ExactRequest{
		Probabilities: []float64{0.5, 0.3},
		DecimalOdds:   []float64{2.0},
	}, testDefaults)
	require.NoError(t, err)

	assert.Empty(t, resp.Rows)
	assert.Empty(t, resp.Fractions)
	assert.Len(t, resp.Warnings, 1)

	resp, err = calculator.CalculateExact(models.ExactRequest{}, testDefaults)
	require.NoError(t, err)
	assert.Empty(t, resp.Rows)
	assert.Empty(t, resp.Warnings)
}

func TestCalculateExact_RespectsCap(t *testing.T) {
	resp, err := calculator.CalculateExact(models.ExactRequest{
		Probabilities: []float64{0.5, 0.3, 0.2},
		DecimalOdds:   []float64{3.0, 4.0, 6.0},
		Cap:           0.3,
	}, testDefaults)
	require.NoError(t, err)

	assert.LessOrEqual(t, resp.TotalFraction, 0.3)
	for _, row := range resp.Rows {
		assert.GreaterOrEqual(t, row.RecommendedFraction, 0.0)
	}
}
