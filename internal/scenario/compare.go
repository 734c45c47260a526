package scenario

import (
	"math"
	"sort"

	"ecopack-forecast/internal/plan"
	"ecopack-forecast/internal/simulation"
)

// Scenario is a forecast together with the plan it was computed from.
type Scenario struct {
	Plan     plan.Plan
	Forecast simulation.Forecast
}

// Row is one aligned period of a comparison. Values a side does not plan are 0.
type Row struct {
	Label    string  `json:"label"`
	VolumeA  float64 `json:"planA_volume"`
	CostA    float64 `json:"planA_cost"`
	CO2A     float64 `json:"planA_co2"`
	VolumeB  float64 `json:"planB_volume"`
	CostB    float64 `json:"planB_cost"`
	CO2B     float64 `json:"planB_co2"`
	DiffCost float64 `json:"diff_cost"`
	DiffCO2  float64 `json:"diff_co2"`
}

// Totals aggregates the rows of a comparison.
type Totals struct {
	VolumeA   float64 `json:"planA_volume"`
	CostA     float64 `json:"planA_cost"`
	CO2A      float64 `json:"planA_co2"`
	VolumeB   float64 `json:"planB_volume"`
	CostB     float64 `json:"planB_cost"`
	CO2B      float64 `json:"planB_co2"`
	DeltaCost float64 `json:"diff_cost"`
	DeltaCO2  float64 `json:"diff_co2"`
}

// Comparison aligns two scenarios on the union of their periods.
type Comparison struct {
	Labels []string `json:"labels"`
	Rows   []Row    `json:"rows"`
	Totals Totals   `json:"totals"`
}

// Compare aligns a and b on the sorted union of their labels. A label missing on one
// side counts as 0 on that side, so a planned zero and an unplanned month look the same.
// Deltas are B minus A.
func Compare(a, b Scenario) Comparison {
	labels := unionLabels(a.Forecast.Labels, b.Forecast.Labels)

	c := Comparison{
		Labels: labels,
		Rows:   make([]Row, len(labels)),
	}

	for i, label := range labels {
		costA, co2A := meansAt(a.Forecast, label)
		costB, co2B := meansAt(b.Forecast, label)

		row := Row{
			Label:    label,
			VolumeA:  a.Plan.VolumeAt(label),
			CostA:    costA,
			CO2A:     co2A,
			VolumeB:  b.Plan.VolumeAt(label),
			CostB:    costB,
			CO2B:     co2B,
			DiffCost: costB - costA,
			DiffCO2:  co2B - co2A,
		}
		c.Rows[i] = row

		c.Totals.VolumeA = addSaturating(c.Totals.VolumeA, row.VolumeA)
		c.Totals.CostA = addSaturating(c.Totals.CostA, row.CostA)
		c.Totals.CO2A = addSaturating(c.Totals.CO2A, row.CO2A)
		c.Totals.VolumeB = addSaturating(c.Totals.VolumeB, row.VolumeB)
		c.Totals.CostB = addSaturating(c.Totals.CostB, row.CostB)
		c.Totals.CO2B = addSaturating(c.Totals.CO2B, row.CO2B)
		c.Totals.DeltaCost = addSaturating(c.Totals.DeltaCost, row.DiffCost)
		c.Totals.DeltaCO2 = addSaturating(c.Totals.DeltaCO2, row.DiffCO2)
	}

	return c
}

// addSaturating clamps the sum to the finite float64 range so totals stay JSON-encodable.
func addSaturating(sum, v float64) float64 {
	return max(-math.MaxFloat64, min(sum+v, math.MaxFloat64))
}

func meansAt(f simulation.Forecast, label string) (cost, co2 float64) {
	i := f.IndexOf(label)
	if i < 0 {
		return 0, 0
	}
	if i < len(f.Totals.TotalCostUSD.Mean) {
		cost = f.Totals.TotalCostUSD.Mean[i]
	}
	if i < len(f.Totals.TotalCO2Kg.Mean) {
		co2 = f.Totals.TotalCO2Kg.Mean[i]
	}
	return cost, co2
}

func unionLabels(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, l := range list {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	sort.Strings(out)
	return out
}
