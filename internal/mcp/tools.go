package mcp

import (
	"fmt"

	"ecopack-forecast/internal/plan"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// PlanRow is one (period, volume) entry of a production plan.
type PlanRow struct {
	Period     string  `json:"period" jsonschema:"Month in YYYY-MM format, e.g. 2026-02"`
	VolumeTons float64 `json:"volumeTons" jsonschema:"Planned packaging volume for the month in metric tons (>= 0)"`
}

// ForecastArgs are the arguments of forecast_plan.
type ForecastArgs struct {
	PlannedVolumes []PlanRow `json:"plannedVolumes" jsonschema:"Monthly production plan. Invalid or duplicate months are dropped; the first valid row for a month wins."`
	Simulations    *int      `json:"simulations,omitempty" jsonschema:"Monte-Carlo trials per month. Defaults to the server default; clamped to the server cap."`
	Material       string    `json:"material,omitempty" jsonschema:"Packaging material id from list_materials. Defaults to the server default material."`
	Seed           *uint64   `json:"seed,omitempty" jsonschema:"Optional random seed. The same seed and plan reproduce the same forecast."`
}

// CompareArgs are the arguments of compare_plans.
type CompareArgs struct {
	ScenarioA ForecastArgs `json:"scenarioA" jsonschema:"Baseline scenario (A)"`
	ScenarioB ForecastArgs `json:"scenarioB" jsonschema:"Alternative scenario (B). Deltas are reported as B minus A."`
	AsCSV     bool         `json:"as_csv,omitempty" jsonschema:"If true, return the comparison table as CSV instead of JSON."`
}

// ListMaterialsArgs are the (empty) arguments of list_materials.
type ListMaterialsArgs struct{}

func (a ForecastArgs) rows() []plan.RawRow {
	entries := make([]plan.PeriodVolume, len(a.PlannedVolumes))
	for i, r := range a.PlannedVolumes {
		entries[i] = plan.PeriodVolume{Period: r.Period, VolumeTons: r.VolumeTons}
	}
	return plan.FromVolumes(entries)
}

func (s *Server) registerTools() error {
	forecastSchema, err := s.forecastSchema()
	if err != nil {
		return err
	}
	compareSchema, err := jsonschema.For[CompareArgs](nil)
	if err != nil {
		return fmt.Errorf("compare_plans schema: %w", err)
	}
	compareSchema.Properties["scenarioA"] = withDescription(forecastSchema, "Baseline scenario (A)")
	compareSchema.Properties["scenarioB"] = withDescription(forecastSchema, "Alternative scenario (B). Deltas are reported as B minus A.")

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "forecast_plan",
		Description: "Forecast the monthly packaging cost (USD) and CO2 (kg) of a production plan with a Monte-Carlo simulation. " +
			"Returns per-month mean and P10/P50/P90 bands for total_cost_usd and total_co2_kg.\n\n" +
			"The bands describe uncertainty in the per-kg cost and emission factors of the chosen material, NOT uncertainty in the planned volumes. " +
			"Months are simulated independently: DO NOT sum P10 or P90 values across months and present them as a range for the whole plan.\n" +
			"Call 'list_materials' first if the user has not named a material.",
		InputSchema: forecastSchema,
	}, s.handleForecastPlan)

	sdk.AddTool(s.server, &sdk.Tool{
		Name: "compare_plans",
		Description: "Forecast two production plans (scenario A and scenario B) and align them month by month. " +
			"Months present in only one plan are filled with zeros on the other side. Deltas are B minus A; the totals row sums the monthly mean deltas.\n\n" +
			"Use this to answer 'what if' questions such as switching material or shifting volume between months.",
		InputSchema: compareSchema,
	}, s.handleComparePlans)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "list_materials",
		Description: "List the packaging materials available for forecasting with their baseline per-kg cost and CO2 factors and spread. Also reports the default and maximum number of simulations.",
	}, s.handleListMaterials)

	return nil
}

func (s *Server) forecastSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[ForecastArgs](nil)
	if err != nil {
		return nil, fmt.Errorf("forecast_plan schema: %w", err)
	}

	settings := s.svc.Settings()
	if sims, ok := schema.Properties["simulations"]; ok {
		lo, hi := 1.0, float64(settings.MaxSimulations)
		sims.Minimum = &lo
		sims.Maximum = &hi
	}
	if rows, ok := schema.Properties["plannedVolumes"]; ok && rows.Items != nil {
		zero := 0.0
		if vol, ok := rows.Items.Properties["volumeTons"]; ok {
			vol.Minimum = &zero
		}
		if period, ok := rows.Items.Properties["period"]; ok {
			period.Pattern = `^\d{4}-\d{2}$`
		}
	}
	return schema, nil
}

func withDescription(schema *jsonschema.Schema, description string) *jsonschema.Schema {
	cp := *schema
	cp.Description = description
	return &cp
}
