package simulation

import (
	"math"
	"math/rand/v2"

	"ecopack-forecast/internal/materials"
)

// KgPerTon converts planned volumes (tons) to the unit of the per-kg rates.
const KgPerTon = 1000.0

// volumeKg converts tons to kg, saturating at the largest finite float64.
func volumeKg(tons float64) float64 {
	return math.Min(tons*KgPerTon, math.MaxFloat64)
}

// Outcome is one trial's total cost and CO2 for one period.
type Outcome struct {
	Cost float64
	CO2  float64
}

// Sampler draws one trial outcome for a period.
type Sampler interface {
	Sample(volumeTons float64, trial int) Outcome
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(volumeTons float64, trial int) Outcome

// Sample calls f.
func (f SamplerFunc) Sample(volumeTons float64, trial int) Outcome {
	return f(volumeTons, trial)
}

// Source hands out one Sampler per period. Samplers from distinct calls must not share
// mutable state, since periods are simulated concurrently.
type Source interface {
	Stream(period int) Sampler
}

// SourceFunc adapts a function to Source.
type SourceFunc func(period int) Sampler

// Stream calls f.
func (f SourceFunc) Stream(period int) Sampler {
	return f(period)
}

// TriangularSource samples per-kg rates of a material from triangular distributions.
// Each period gets its own PCG stream derived from (Seed, period), so a run is
// reproducible for a given seed regardless of scheduling.
type TriangularSource struct {
	Material materials.Material
	Seed     uint64
}

// NewTriangularSource returns a source for m. A nil seed draws a fresh one.
func NewTriangularSource(m materials.Material, seed *uint64) *TriangularSource {
	s := rand.Uint64()
	if seed != nil {
		s = *seed
	}
	return &TriangularSource{Material: m, Seed: s}
}

// Stream returns the sampler for a period.
func (s *TriangularSource) Stream(period int) Sampler {
	return &triangularSampler{
		rng:      rand.New(rand.NewPCG(s.Seed, uint64(period))),
		material: s.Material,
	}
}

type triangularSampler struct {
	rng      *rand.Rand
	material materials.Material
}

func (t *triangularSampler) Sample(volumeTons float64, _ int) Outcome {
	kg := volumeKg(volumeTons)
	costPerKg := drawRate(t.rng, t.material.CostUSD)
	co2PerKg := drawRate(t.rng, t.material.CO2Kg)
	return Outcome{
		Cost: costPerKg * kg,
		CO2:  co2PerKg * kg,
	}
}

func drawRate(rng *rand.Rand, r materials.Rate) float64 {
	low, mode, high := r.Bounds()
	v := triangular(rng.Float64(), low, mode, high)
	return math.Max(v, math.Max(r.Floor, 0))
}

// triangular maps a uniform u in [0,1) through the inverse CDF of Tri(a, c, b).
func triangular(u, a, c, b float64) float64 {
	if b <= a {
		return c
	}
	fc := (c - a) / (b - a)
	if u < fc {
		return a + math.Sqrt(u*(b-a)*(c-a))
	}
	return b - math.Sqrt((1-u)*(b-a)*(b-c))
}
