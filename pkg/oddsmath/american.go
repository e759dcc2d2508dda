package oddsmath

import (
	"fmt"
	"math"
)

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.67
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("american odds cannot be 0: %w", ErrInvalidOdds)
	}

	if american > 0 {
		// Positive odds: (american / 100) + 1
		return (float64(american) / 100.0) + 1.0, nil
	}

	// Negative odds: (100 / abs(american)) + 1
	return (100.0 / float64(-american)) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds
// Decimal 2.50 → American +150
// Decimal 1.67 → American -150
func DecimalToAmerican(decimal float64) (int, error) {
	if !IsValidDecimal(decimal) {
		return 0, fmt.Errorf("decimal odds %v must be > 1: %w", decimal, ErrInvalidOdds)
	}

	if decimal >= 2.0 {
		// Positive American odds: (decimal - 1) * 100
		return saturateInt(math.Round((decimal - 1.0) * 100.0)), nil
	}

	// Negative American odds: -100 / (decimal - 1)
	return -saturateInt(math.Round(100.0 / (decimal - 1.0))), nil
}

// saturateInt converts a non-negative whole float to int, clamping at math.MaxInt.
func saturateInt(v float64) int {
	if v >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(v)
}

// DecimalToImpliedProbability converts decimal odds to implied probability
// Decimal 2.00 → 0.50 (50%)
// Decimal 1.50 → 0.667 (66.7%)
func DecimalToImpliedProbability(decimal float64) (float64, error) {
	if !IsValidDecimal(decimal) {
		return 0, fmt.Errorf("decimal odds %v must be > 1: %w", decimal, ErrInvalidOdds)
	}

	return 1.0 / decimal, nil
}

// ProbabilityToDecimal converts probability to decimal odds
// 0.50 (50%) → Decimal 2.00
// 0.667 (66.7%) → Decimal 1.50
func ProbabilityToDecimal(probability float64) (float64, error) {
	if probability <= 0 || probability >= 1 || math.IsNaN(probability) {
		return 0, fmt.Errorf("invalid probability %v: must be between 0 and 1", probability)
	}

	return 1.0 / probability, nil
}

// IsValidDecimal reports whether d is a usable price: finite and strictly above 1.
func IsValidDecimal(d float64) bool {
	return d > 1 && !math.IsInf(d, 1)
}
