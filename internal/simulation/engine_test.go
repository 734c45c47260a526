package simulation

import (
	"context"
	"errors"
	"math"
	"reflect"
	"sync/atomic"
	"testing"

	"ecopack-forecast/internal/materials"
	"ecopack-forecast/internal/plan"
)

const tolerance = 1e-9

func testPlan(t *testing.T, rows ...plan.RawRow) plan.Plan {
	t.Helper()
	p := plan.Normalize(rows)
	if p.Len() != len(rows) {
		t.Fatalf("test plan rows were dropped: %+v", rows)
	}
	return p
}

func seeded(seed uint64) *TriangularSource {
	m, _ := materials.Default().Lookup(materials.DefaultMaterialID)
	return NewTriangularSource(m, &seed)
}

func assertBandsOrdered(t *testing.T, name string, m MetricSeries) {
	t.Helper()
	for i := range m.Mean {
		if m.Bands.P10[i] > m.Mean[i]+tolerance || m.Mean[i] > m.Bands.P90[i]+tolerance {
			t.Errorf("%s[%d]: expected p10 <= mean <= p90, got %v <= %v <= %v",
				name, i, m.Bands.P10[i], m.Mean[i], m.Bands.P90[i])
		}
		if m.Bands.P10[i] > m.Bands.P50[i] || m.Bands.P50[i] > m.Bands.P90[i] {
			t.Errorf("%s[%d]: percentiles out of order: %v %v %v", name, i, m.Bands.P10[i], m.Bands.P50[i], m.Bands.P90[i])
		}
	}
}

func TestEngine_TwoMonthScenario(t *testing.T) {
	p := testPlan(t,
		plan.RawRow{Period: "2026-01", VolumeTons: "1"},
		plan.RawRow{Period: "2026-02", VolumeTons: "1"},
	)

	f, err := NewEngine(seeded(7), Config{Simulations: 1000}).Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !reflect.DeepEqual(f.Labels, []string{"2026-01", "2026-02"}) {
		t.Errorf("unexpected labels %v", f.Labels)
	}
	for name, m := range map[string]MetricSeries{"cost": f.Totals.TotalCostUSD, "co2": f.Totals.TotalCO2Kg} {
		if len(m.Mean) != 2 || len(m.Bands.P10) != 2 || len(m.Bands.P90) != 2 {
			t.Fatalf("%s: expected series of length 2, got %+v", name, m)
		}
		for i, v := range m.Mean {
			if v < 0 || m.Bands.P10[i] < 0 {
				t.Errorf("%s[%d]: expected non-negative values, got mean %v p10 %v", name, i, v, m.Bands.P10[i])
			}
		}
		assertBandsOrdered(t, name, m)
	}

	// 1 ton of recycled cardboard at ~1.10 USD/kg.
	if mean := f.Totals.TotalCostUSD.Mean[0]; mean < 1000 || mean > 1200 {
		t.Errorf("expected mean cost near 1100 USD, got %v", mean)
	}
	if f.Meta.Simulations != 1000 || f.Meta.EffectiveTrials[0] != 1000 {
		t.Errorf("unexpected meta %+v", f.Meta)
	}
	if f.Inputs.VolumeKg[0] != 1000 || f.Inputs.CountPeriods != 2 {
		t.Errorf("unexpected inputs %+v", f.Inputs)
	}
}

func TestEngine_SingleTrial(t *testing.T) {
	p := testPlan(t, plan.RawRow{Period: "2026-04", VolumeTons: "2.5"})

	f, err := NewEngine(seeded(1), Config{Simulations: 1}).Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	c := f.Totals.TotalCostUSD
	if c.Mean[0] != c.Bands.P10[0] || c.Mean[0] != c.Bands.P90[0] || c.Mean[0] != c.Bands.P50[0] {
		t.Errorf("expected mean = p10 = p50 = p90 for one trial, got %+v", c)
	}
}

func TestEngine_KnownTrialValues(t *testing.T) {
	// cost = trial+1, co2 = 10*(trial+1) for ten trials.
	source := SourceFunc(func(int) Sampler {
		return SamplerFunc(func(_ float64, trial int) Outcome {
			return Outcome{Cost: float64(trial + 1), CO2: float64(10 * (trial + 1))}
		})
	})
	p := testPlan(t, plan.RawRow{Period: "2026-01", VolumeTons: "1"})

	f, err := NewEngine(source, Config{Simulations: 10}).Run(context.Background(), p)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	c := f.Totals.TotalCostUSD
	checks := map[string][2]float64{
		"mean": {c.Mean[0], 5.5},
		"p10":  {c.Bands.P10[0], 1.9},
		"p50":  {c.Bands.P50[0], 5.5},
		"p90":  {c.Bands.P90[0], 9.1},
		"co2":  {f.Totals.TotalCO2Kg.Mean[0], 55},
	}
	for name, pair := range checks {
		if math.Abs(pair[0]-pair[1]) > tolerance {
			t.Errorf("%s: expected %v, got %v", name, pair[1], pair[0])
		}
	}
}

func TestEngine_VolumeMonotonicity(t *testing.T) {
	base := testPlan(t,
		plan.RawRow{Period: "2026-01", VolumeTons: "1"},
		plan.RawRow{Period: "2026-02", VolumeTons: "3.5"},
		plan.RawRow{Period: "2026-03", VolumeTons: "0"},
	)
	doubled := testPlan(t,
		plan.RawRow{Period: "2026-01", VolumeTons: "2"},
		plan.RawRow{Period: "2026-02", VolumeTons: "7"},
		plan.RawRow{Period: "2026-03", VolumeTons: "0"},
	)

	cfg := Config{Simulations: 500}
	a, err := NewEngine(seeded(99), cfg).Run(context.Background(), base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEngine(seeded(99), cfg).Run(context.Background(), doubled)
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.Labels {
		if b.Totals.TotalCostUSD.Mean[i] < a.Totals.TotalCostUSD.Mean[i] {
			t.Errorf("period %s: doubling volume decreased mean cost (%v -> %v)",
				a.Labels[i], a.Totals.TotalCostUSD.Mean[i], b.Totals.TotalCostUSD.Mean[i])
		}
	}
	if a.Totals.TotalCostUSD.Mean[2] != 0 {
		t.Errorf("expected zero cost for zero volume, got %v", a.Totals.TotalCostUSD.Mean[2])
	}
}

func TestEngine_SeedIsIndependentOfWorkerCount(t *testing.T) {
	p := testPlan(t,
		plan.RawRow{Period: "2026-01", VolumeTons: "1"},
		plan.RawRow{Period: "2026-02", VolumeTons: "2"},
		plan.RawRow{Period: "2026-03", VolumeTons: "3"},
		plan.RawRow{Period: "2026-04", VolumeTons: "4"},
		plan.RawRow{Period: "2026-05", VolumeTons: "5"},
	)

	serial, err := NewEngine(seeded(2026), Config{Simulations: 300, Workers: 1}).Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := NewEngine(seeded(2026), Config{Simulations: 300, Workers: 4}).Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(serial, parallel) {
		t.Errorf("expected identical forecasts for the same seed")
	}

	other, err := NewEngine(seeded(2027), Config{Simulations: 300}).Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(serial.Totals, other.Totals) {
		t.Errorf("expected different draws for a different seed")
	}
}

func TestEngine_SamplingFailuresAreDiscarded(t *testing.T) {
	source := SourceFunc(func(period int) Sampler {
		return SamplerFunc(func(_ float64, trial int) Outcome {
			if period == 1 {
				return Outcome{Cost: math.NaN(), CO2: 1}
			}
			if trial%2 == 0 {
				return Outcome{Cost: math.Inf(1), CO2: 1}
			}
			return Outcome{Cost: 4, CO2: 2}
		})
	})
	p := testPlan(t,
		plan.RawRow{Period: "2026-01", VolumeTons: "1"},
		plan.RawRow{Period: "2026-02", VolumeTons: "1"},
	)

	f, err := NewEngine(source, Config{Simulations: 100}).Run(context.Background(), p)
	if err != nil {
		t.Fatalf("expected sampling failures to be recovered, got %v", err)
	}

	if f.Meta.EffectiveTrials[0] != 50 {
		t.Errorf("expected 50 effective trials, got %d", f.Meta.EffectiveTrials[0])
	}
	if f.Totals.TotalCostUSD.Mean[0] != 4 {
		t.Errorf("expected failed trials to be excluded from the mean, got %v", f.Totals.TotalCostUSD.Mean[0])
	}

	if f.Meta.EffectiveTrials[1] != 0 {
		t.Errorf("expected no effective trials for the failing period, got %d", f.Meta.EffectiveTrials[1])
	}
	if f.Totals.TotalCostUSD.Mean[1] != 0 || f.Totals.TotalCO2Kg.Bands.P90[1] != 0 {
		t.Errorf("expected zeros for an all-failed period, got %+v", f.Totals)
	}
	if !reflect.DeepEqual(f.Meta.DegeneratePeriods, []string{"2026-02"}) {
		t.Errorf("expected 2026-02 to be reported degenerate, got %v", f.Meta.DegeneratePeriods)
	}
}

func TestEngine_NegativeDrawsClampToZero(t *testing.T) {
	source := SourceFunc(func(int) Sampler {
		return SamplerFunc(func(float64, int) Outcome { return Outcome{Cost: -5, CO2: -1} })
	})
	p := testPlan(t, plan.RawRow{Period: "2026-01", VolumeTons: "1"})

	f, err := NewEngine(source, Config{Simulations: 5}).Run(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if f.Totals.TotalCostUSD.Bands.P10[0] != 0 || f.Totals.TotalCO2Kg.Mean[0] != 0 {
		t.Errorf("expected clamped zeros, got %+v", f.Totals)
	}
	if f.Meta.EffectiveTrials[0] != 5 {
		t.Errorf("clamped trials must still count, got %d", f.Meta.EffectiveTrials[0])
	}
}

func TestEngine_EmptyPlan(t *testing.T) {
	var streams atomic.Int32
	source := SourceFunc(func(int) Sampler {
		streams.Add(1)
		return SamplerFunc(func(float64, int) Outcome { return Outcome{} })
	})

	_, err := NewEngine(source, Config{Simulations: 10}).Run(context.Background(), plan.Plan{})
	if !errors.Is(err, ErrEmptyPlan) {
		t.Errorf("expected ErrEmptyPlan, got %v", err)
	}
	if streams.Load() != 0 {
		t.Errorf("expected no sampling for an empty plan, got %d streams", streams.Load())
	}
}

func TestEngine_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testPlan(t, plan.RawRow{Period: "2026-01", VolumeTons: "1"})
	f, err := NewEngine(seeded(3), Config{Simulations: 5000}).Run(ctx, p)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if f.Labels != nil {
		t.Errorf("expected no partial forecast, got %+v", f)
	}
}

func TestEngine_CancellationMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := SourceFunc(func(period int) Sampler {
		return SamplerFunc(func(_ float64, trial int) Outcome {
			if period == 0 && trial == 10 {
				cancel()
			}
			return Outcome{Cost: 1, CO2: 1}
		})
	})
	p := testPlan(t,
		plan.RawRow{Period: "2026-01", VolumeTons: "1"},
		plan.RawRow{Period: "2026-02", VolumeTons: "1"},
	)

	if _, err := NewEngine(source, Config{Simulations: 5000, Workers: 1}).Run(ctx, p); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClampSimulations(t *testing.T) {
	tests := []struct {
		name     string
		n, limit int
		expected int
	}{
		{"Zero", 0, 5000, 1},
		{"Negative", -20, 5000, 1},
		{"InRange", 500, 5000, 500},
		{"AboveLimit", 9000, 2000, 2000},
		{"NoLimit", 9000, 0, MaxSimulations},
		{"LimitAboveHardCap", 9000, 100000, MaxSimulations},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampSimulations(tt.n, tt.limit); got != tt.expected {
				t.Errorf("ClampSimulations(%d, %d) = %d, want %d", tt.n, tt.limit, got, tt.expected)
			}
		})
	}
}
