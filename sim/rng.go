package sim

import (
	"math"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two replications with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical patient ledgers and notification streams.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Combined LCG constants ===

const (
	lcgMultiplier1 int64 = 40014
	lcgModulus1    int64 = 2147483563
	lcgMultiplier2 int64 = 40692
	lcgModulus2    int64 = 2147483399
)

// === Generator ===

// Generator is a two-stream combined linear congruential generator
// (L'Ecuyer 1988). Every stochastic decision in a replication draws from a
// single Generator so that the order of draws fully determines the run.
//
// Draw() never returns 0 or 1, so logarithms of a draw or of its complement
// are always finite.
//
// Thread-safety: NOT thread-safe. Each replication owns its own Generator.
type Generator struct {
	key   SimulationKey
	s1    int64
	s2    int64
	draws uint64
}

// NewGenerator seeds both streams from key. Negative seeds are reduced with
// floor semantics so every int64 seed yields a valid state.
func NewGenerator(key SimulationKey) *Generator {
	seed := int64(key)
	return &Generator{
		key: key,
		s1:  floorMod(seed, lcgModulus1-1) + 1,
		s2:  floorMod(floorDiv(seed, lcgModulus1-1), lcgModulus2-1) + 1,
	}
}

// Key returns the SimulationKey this generator was seeded with.
func (g *Generator) Key() SimulationKey {
	return g.key
}

// Draws returns how many uniform variates have been consumed.
func (g *Generator) Draws() uint64 {
	return g.draws
}

// Draw advances both streams and returns a uniform variate in (0, 1).
func (g *Generator) Draw() float64 {
	g.draws++
	g.s1 = lcgMultiplier1 * g.s1 % lcgModulus1
	g.s2 = lcgMultiplier2 * g.s2 % lcgModulus2

	z := floorMod(g.s1-g.s2, lcgModulus1-1)
	if z > 0 {
		return float64(z) / float64(lcgModulus1)
	}
	return float64(lcgModulus1-1) / float64(lcgModulus1)
}

// Uniform returns a + (b-a)*u.
func (g *Generator) Uniform(a, b float64) float64 {
	return a + (b-a)*g.Draw()
}

// Normal returns a Box-Muller variate. Consumes exactly two draws.
func (g *Generator) Normal(mean, stddev float64) float64 {
	if stddev < 0 || math.IsNaN(stddev) {
		violate("normal", "generator", "standard deviation must be >= 0, got %v", stddev)
	}
	u1 := g.Draw()
	u2 := g.Draw()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return mean + stddev*z
}

// Exponential returns -ln(1-u)/rate.
func (g *Generator) Exponential(rate float64) float64 {
	if !(rate > 0) || math.IsInf(rate, 0) {
		violate("exponential", "generator", "rate must be a finite value > 0, got %v", rate)
	}
	return -math.Log(1-g.Draw()) / rate
}

// Poisson counts multiplicative draws until the running product falls to
// e^-lambda (Knuth's method).
func (g *Generator) Poisson(lambda float64) int {
	if lambda < 0 || math.IsNaN(lambda) {
		violate("poisson", "generator", "lambda must be >= 0, got %v", lambda)
	}
	if lambda == 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for p > limit {
		k++
		p *= g.Draw()
	}
	return k - 1
}

// IntN returns an integer in [a, b], both ends inclusive.
func (g *Generator) IntN(a, b int) int {
	if a > b {
		violate("randint", "generator", "lower bound %d exceeds upper bound %d", a, b)
	}
	return a + int(g.Draw()*float64(b-a+1))
}

// Triangular returns a triangular variate on [low, high] peaking at mode.
func (g *Generator) Triangular(low, high, mode float64) float64 {
	if !(low <= mode && mode <= high) {
		violate("triangular", "generator", "mode %v outside [%v, %v]", mode, low, high)
	}
	u := g.Draw()
	if high == low {
		return low
	}
	if u < (mode-low)/(high-low) {
		return low + math.Sqrt(u*(high-low)*(mode-low))
	}
	return high - math.Sqrt((1-u)*(high-low)*(high-mode))
}

// Bernoulli consumes one draw and reports whether it fell below p.
func (g *Generator) Bernoulli(p float64) bool {
	return g.Draw() < p
}

func floorMod(a, n int64) int64 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func floorDiv(a, n int64) int64 {
	q := a / n
	if (a%n != 0) && ((a < 0) != (n < 0)) {
		q--
	}
	return q
}
