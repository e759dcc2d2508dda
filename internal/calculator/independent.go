package calculator

import "math"

// marketSumTolerancePct is how far market probabilities may stray from 100%
// before the result carries a warning
const marketSumTolerancePct = 0.5

// IndependentRow is the sizing of one outcome in an independent allocation
type IndependentRow struct {
	Name        string
	DecimalOdds float64
	Fraction    float64 // independent Kelly fraction before scaling
	Recommended float64 // fraction after scaling to the stake cap
}

// IndependentResult is the outcome of IndependentAllocate
type IndependentResult struct {
	Rows             []IndependentRow
	SumKelly         float64
	Scale            float64
	StakeCap         float64
	MarketSumPct     float64
	MarketSumWarning bool
}

// Fractions returns the recommended fraction per outcome, in input order
func (r IndependentResult) Fractions() []float64 {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Recommended
	}
	return out
}

// IndependentAllocate sizes each mutually exclusive outcome with single-bet Kelly
// at no-vig market odds, then scales every stake by stakeCap/sum when the total
// exceeds the cap.
//
// This is an approximation: it ignores that only one outcome can win. Use
// ExactAllocate for the jointly optimal stakes.
func IndependentAllocate(outcomes []Outcome, stakeCap float64) IndependentResult {
	stakeCap = normalizeCap(stakeCap)

	rows := make([]IndependentRow, len(outcomes))
	sumKelly := 0.0
	marketSum := 0.0

	for i, o := range outcomes {
		d := marketDecimal(o.MarketPct)
		f := kellyFraction(d-1.0, pctToProbability(o.YourPct))

		rows[i] = IndependentRow{
			Name:        o.Name,
			DecimalOdds: d,
			Fraction:    f,
		}
		sumKelly += f
		if !math.IsNaN(o.MarketPct) {
			marketSum += o.MarketPct
		}
	}

	scale := 1.0
	if sumKelly > stakeCap {
		scale = stakeCap / sumKelly
	}
	recommended := make([]float64, len(rows))
	for i := range rows {
		recommended[i] = rows[i].Fraction * scale
	}
	if scale < 1 {
		trimToCap(recommended, stakeCap)
	}
	for i := range rows {
		rows[i].Recommended = recommended[i]
	}

	return IndependentResult{
		Rows:             rows,
		SumKelly:         sumKelly,
		Scale:            scale,
		StakeCap:         stakeCap,
		MarketSumPct:     marketSum,
		MarketSumWarning: len(outcomes) > 0 && math.Abs(marketSum-100.0) > marketSumTolerancePct,
	}
}

// IndependentAllocateFractions is IndependentAllocate reduced to the recommended fractions
func IndependentAllocateFractions(outcomes []Outcome, stakeCap float64) []float64 {
	return IndependentAllocate(outcomes, stakeCap).Fractions()
}
