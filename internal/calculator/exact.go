package calculator

import "math"

// Search parameters of the exact allocator
const (
	// WealthFloor is the smallest bankroll multiplier treated as solvent
	WealthFloor = 1e-12

	InitialStepSize      = 0.25
	MaxStepSize          = 1.0
	MinStepSize          = 1e-6
	StepGrowth           = 1.05
	StepShrink           = 0.5
	MaxIterations        = 300
	ImprovementTolerance = 1e-9

	// residualEpsilon ignores unassigned probability mass below this size
	residualEpsilon = 1e-12

	// maxInitHalvings bounds how often an insolvent starting point is halved
	maxInitHalvings = 60
)

// Problem is the expected log-growth maximisation over a set of mutually
// exclusive outcomes:
//
//	maximize  sum_i p_i ln(W_i(f)),  W_i(f) = 1 - sum_j f_j + d_i f_i
//	subject to  f_i >= 0,  sum_i f_i <= cap
//
// Probability mass not assigned to any outcome (1 - sum p) is the event that
// none of them happens; it contributes r ln(1 - sum f).
type Problem struct {
	probs    []float64
	odds     []float64
	residual float64
	stakeCap float64
}

// NewProblem validates and copies the inputs. It reports false when there are
// no outcomes or the slices differ in length.
func NewProblem(probabilities, decimalOdds []float64, stakeCap float64) (*Problem, bool) {
	n := len(probabilities)
	if n == 0 || n != len(decimalOdds) {
		return nil, false
	}

	pr := &Problem{
		probs:    make([]float64, n),
		odds:     make([]float64, n),
		stakeCap: normalizeCap(stakeCap),
	}

	total := 0.0
	for i := range probabilities {
		pr.probs[i] = clamp(probabilities[i], 0, 1)
		total += pr.probs[i]

		// non-finite prices are non-viable legs
		if d := decimalOdds[i]; !math.IsNaN(d) && !math.IsInf(d, 0) {
			pr.odds[i] = d
		}
	}
	if r := 1.0 - total; r > residualEpsilon {
		pr.residual = r
	}

	return pr, true
}

// Len is the number of outcomes
func (pr *Problem) Len() int {
	return len(pr.probs)
}

// StakeCap is the normalised cap on total stake
func (pr *Problem) StakeCap() float64 {
	return pr.stakeCap
}

// Objective is the expected log growth at f, or -Inf when any reachable
// bankroll multiplier is at or below WealthFloor.
func (pr *Problem) Objective(f []float64) float64 {
	staked := sum(f)
	growth := 0.0

	for i, p := range pr.probs {
		w := 1.0 - staked + pr.odds[i]*f[i]
		if w <= WealthFloor {
			return math.Inf(-1)
		}
		growth += p * math.Log(w)
	}

	if pr.residual > 0 {
		w := 1.0 - staked
		if w <= WealthFloor {
			return math.Inf(-1)
		}
		growth += pr.residual * math.Log(w)
	}

	return growth
}

// Gradient of Objective at a solvent point f:
// dG/df_i = -sum_j p_j/W_j - r/W_0 + p_i d_i / W_i
func (pr *Problem) Gradient(f []float64) []float64 {
	staked := sum(f)
	wealth := make([]float64, len(f))

	common := 0.0
	for i, p := range pr.probs {
		wealth[i] = 1.0 - staked + pr.odds[i]*f[i]
		common += p / wealth[i]
	}
	if pr.residual > 0 {
		common += pr.residual / (1.0 - staked)
	}

	grad := make([]float64, len(f))
	for i, p := range pr.probs {
		grad[i] = -common + p*pr.odds[i]/wealth[i]
	}
	return grad
}

// InitialPoint is the independent Kelly allocation at the given odds, scaled
// into the cap and shrunk toward zero until it is solvent.
func (pr *Problem) InitialPoint() []float64 {
	f := make([]float64, pr.Len())
	for i, p := range pr.probs {
		f[i] = kellyFraction(pr.odds[i]-1.0, p)
	}

	if total := sum(f); total > pr.stakeCap {
		scale := pr.stakeCap / total
		for i := range f {
			f[i] *= scale
		}
		trimToCap(f, pr.stakeCap)
	}

	for k := 0; k < maxInitHalvings && math.IsInf(pr.Objective(f), -1); k++ {
		for i := range f {
			f[i] *= 0.5
		}
	}
	if math.IsInf(pr.Objective(f), -1) {
		return make([]float64, pr.Len())
	}
	return f
}

// SearchState is one snapshot of the projected gradient ascent. States are
// values: Step never mutates its argument.
type SearchState struct {
	Best          []float64 // best solvent allocation found so far
	BestObjective float64
	Last          []float64 // most recent candidate, accepted or not
	LastObjective float64
	StepSize      float64
	Iteration     int
	Accepted      int
	Done          bool
}

// Start builds the initial search state
func (pr *Problem) Start() SearchState {
	f := pr.InitialPoint()
	obj := pr.Objective(f)
	return SearchState{
		Best:          f,
		BestObjective: obj,
		Last:          f,
		LastObjective: obj,
		StepSize:      InitialStepSize,
	}
}

// Step takes one gradient-ascent step from the best point, projects it onto the
// capped simplex and keeps it only if the objective improves by more than
// ImprovementTolerance. Accepted steps grow the step size, rejected ones halve it.
func (pr *Problem) Step(s SearchState) SearchState {
	if s.Done {
		return s
	}

	grad := pr.Gradient(s.Best)
	candidate := make([]float64, len(s.Best))
	for i := range candidate {
		candidate[i] = s.Best[i] + s.StepSize*grad[i]
	}
	candidate = ProjectCappedSimplex(candidate, pr.stakeCap)
	obj := pr.Objective(candidate)

	next := s
	next.Iteration++
	next.Last = candidate
	next.LastObjective = obj

	if obj > s.BestObjective+ImprovementTolerance {
		next.Best = candidate
		next.BestObjective = obj
		next.StepSize = min(s.StepSize*StepGrowth, MaxStepSize)
		next.Accepted++
	} else {
		next.StepSize = s.StepSize * StepShrink
	}

	next.Done = next.Iteration >= MaxIterations || next.StepSize < MinStepSize
	return next
}

// Solution is the result of a full search
type Solution struct {
	Fractions  []float64
	LogGrowth  float64 // expected log growth at Fractions
	Iterations int
	Accepted   int
	Converged  bool // the step size collapsed before the iteration budget ran out
}

// Optimize runs Step until the search terminates and returns the best point
func (pr *Problem) Optimize() Solution {
	s := pr.Start()
	for !s.Done {
		s = pr.Step(s)
	}

	return Solution{
		Fractions:  s.Best,
		LogGrowth:  s.BestObjective,
		Iterations: s.Iteration,
		Accepted:   s.Accepted,
		Converged:  s.StepSize < MinStepSize,
	}
}

// ExactAllocate returns the stake fractions maximising expected log growth for
// mutually exclusive outcomes with the given probabilities (0..1) and decimal
// odds. Empty or mismatched inputs give an empty allocation.
func ExactAllocate(probabilities, decimalOdds []float64, stakeCap float64) []float64 {
	pr, ok := NewProblem(probabilities, decimalOdds, stakeCap)
	if !ok {
		return []float64{}
	}
	return pr.Optimize().Fractions
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
