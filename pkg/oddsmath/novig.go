package oddsmath

import (
	"fmt"
	"math"
)

// RemoveVigProportional removes vig from an n-way market using the multiplicative method
//
// Formula:
// 1. Sum the implied probabilities: totalProb (typically > 1.0 with vig)
// 2. Normalize: fairProb_i = prob_i / totalProb
// 3. Fair probabilities now sum to 1.0
//
// Example:
// Side A: 52.38% | Side B: 52.38%
// Overround: 104.76% (4.76% vig)
// Fair: 50% / 50%
//
// Markets quoted below 100% are scaled up the same way.
func RemoveVigProportional(probabilities []float64) ([]float64, error) {
	if len(probabilities) < 2 {
		return nil, fmt.Errorf("need at least 2 outcomes")
	}

	totalProb := 0.0
	for _, prob := range probabilities {
		if prob < 0 || prob > 1 || math.IsNaN(prob) {
			return nil, fmt.Errorf("all probabilities must be between 0 and 1")
		}
		totalProb += prob
	}

	if totalProb <= 0 {
		return nil, fmt.Errorf("market has no priced outcomes")
	}

	fairProbs := make([]float64, len(probabilities))
	for i, prob := range probabilities {
		fairProbs[i] = prob / totalProb
	}

	return fairProbs, nil
}

// CalculateVigPercentage calculates the vig (overround) percentage in a market
// Vig% = (TotalProb - 1.0) * 100
//
// Negative values mean the quoted probabilities sum to less than 100%.
func CalculateVigPercentage(probabilities []float64) float64 {
	totalProb := 0.0
	for _, prob := range probabilities {
		totalProb += prob
	}
	return (totalProb - 1.0) * 100.0
}
