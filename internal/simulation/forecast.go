package simulation

import (
	"ecopack-forecast/internal/plan"
	"ecopack-forecast/internal/stats"
)

// Bands holds the percentile series of a metric.
type Bands struct {
	P10 []float64 `json:"p10"`
	P50 []float64 `json:"p50"`
	P90 []float64 `json:"p90"`
}

// MetricSeries is the per-period distribution of one metric, index-aligned with Forecast.Labels.
type MetricSeries struct {
	Mean  []float64 `json:"mean"`
	Bands Bands     `json:"bands"`
}

// Totals groups the forecast metrics under their wire names.
type Totals struct {
	TotalCostUSD MetricSeries `json:"total_cost_usd"`
	TotalCO2Kg   MetricSeries `json:"total_co2_kg"`
}

// Inputs echoes the plan the forecast was computed for.
type Inputs struct {
	VolumeTons   []float64 `json:"volume_tons"`
	VolumeKg     []float64 `json:"volume_kg"`
	CountPeriods int       `json:"count_periods"`
	Freq         string    `json:"freq"`
}

// Meta describes how the forecast was produced.
type Meta struct {
	Simulations       int      `json:"simulations"`
	Material          string   `json:"material,omitempty"`
	EffectiveTrials   []int    `json:"effective_trials"`
	DegeneratePeriods []string `json:"degenerate_periods,omitempty"`
}

// Forecast is the summarized cost and CO2 projection of a Plan.
type Forecast struct {
	Labels []string `json:"labels"`
	Inputs Inputs   `json:"inputs"`
	Totals Totals   `json:"totals"`
	Meta   Meta     `json:"meta"`
}

// IndexOf returns the position of label on the forecast axis, or -1.
func (f Forecast) IndexOf(label string) int {
	for i, l := range f.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// PeriodTrials holds the accepted trial values of one period.
type PeriodTrials struct {
	Cost []float64
	CO2  []float64
}

// PeriodSummary is the reduction of one period's trials.
type PeriodSummary struct {
	Cost stats.Summary
	CO2  stats.Summary
}

// SummarizePeriod reduces one period's trials.
func SummarizePeriod(t PeriodTrials) PeriodSummary {
	return PeriodSummary{
		Cost: stats.Summarize(t.Cost),
		CO2:  stats.Summarize(t.CO2),
	}
}

// SummarizeAll builds a Forecast from a fully materialized trial matrix, one PeriodTrials
// per plan entry in plan order.
func SummarizeAll(p plan.Plan, trials []PeriodTrials, meta Meta) Forecast {
	summaries := make([]PeriodSummary, len(trials))
	for i, t := range trials {
		summaries[i] = SummarizePeriod(t)
	}
	return assemble(p, summaries, meta)
}

func assemble(p plan.Plan, summaries []PeriodSummary, meta Meta) Forecast {
	n := p.Len()
	f := Forecast{
		Labels: p.Labels(),
		Inputs: Inputs{
			VolumeTons:   make([]float64, n),
			VolumeKg:     make([]float64, n),
			CountPeriods: n,
			Freq:         "M",
		},
		Totals: Totals{
			TotalCostUSD: newSeries(n),
			TotalCO2Kg:   newSeries(n),
		},
		Meta: meta,
	}
	f.Meta.EffectiveTrials = make([]int, n)

	for i, e := range p.Entries {
		f.Inputs.VolumeTons[i] = e.VolumeTons
		f.Inputs.VolumeKg[i] = volumeKg(e.VolumeTons)

		if i >= len(summaries) {
			continue
		}
		s := summaries[i]
		f.Totals.TotalCostUSD.set(i, s.Cost)
		f.Totals.TotalCO2Kg.set(i, s.CO2)

		f.Meta.EffectiveTrials[i] = s.Cost.N
		if s.Cost.N == 0 {
			f.Meta.DegeneratePeriods = append(f.Meta.DegeneratePeriods, e.Period)
		}
	}
	return f
}

func newSeries(n int) MetricSeries {
	return MetricSeries{
		Mean: make([]float64, n),
		Bands: Bands{
			P10: make([]float64, n),
			P50: make([]float64, n),
			P90: make([]float64, n),
		},
	}
}

func (m *MetricSeries) set(i int, s stats.Summary) {
	m.Mean[i] = s.Mean
	m.Bands.P10[i] = s.P10
	m.Bands.P50[i] = s.P50
	m.Bands.P90[i] = s.P90
}
