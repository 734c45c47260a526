package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ecopack-forecast/internal/forecast"
	"ecopack-forecast/internal/scenario"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

func (a ForecastArgs) request() forecast.Request {
	return forecast.Request{
		Rows:        a.rows(),
		Simulations: a.Simulations,
		Material:    a.Material,
		Seed:        a.Seed,
	}
}

func (s *Server) handleForecastPlan(ctx context.Context, _ *sdk.CallToolRequest, args ForecastArgs) (*sdk.CallToolResult, any, error) {
	res, err := s.svc.Forecast(ctx, args.request())
	if err != nil {
		return toolError("forecast_plan", err), nil, nil
	}
	return jsonResult(res.Forecast)
}

func (s *Server) handleComparePlans(ctx context.Context, _ *sdk.CallToolRequest, args CompareArgs) (*sdk.CallToolResult, any, error) {
	cmp, err := s.svc.Compare(ctx, args.ScenarioA.request(), args.ScenarioB.request())
	if err != nil {
		return toolError("compare_plans", err), nil, nil
	}

	if args.AsCSV {
		var buf bytes.Buffer
		if err := scenario.WriteCSV(&buf, cmp); err != nil {
			return nil, nil, fmt.Errorf("render comparison csv: %w", err)
		}
		return textResult(buf.String()), nil, nil
	}
	return jsonResult(cmp)
}

// MaterialInfo is one entry of list_materials.
type MaterialInfo struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	CostPerKg  float64 `json:"cost_usd_per_kg"`
	CO2PerKg   float64 `json:"co2_kg_per_kg"`
	CostSpread float64 `json:"cost_spread"`
	CO2Spread  float64 `json:"co2_spread"`
	IsDefault  bool    `json:"is_default,omitempty"`
}

func (s *Server) handleListMaterials(_ context.Context, _ *sdk.CallToolRequest, _ ListMaterialsArgs) (*sdk.CallToolResult, any, error) {
	settings := s.svc.Settings()
	list := s.svc.Catalog().List()

	infos := make([]MaterialInfo, 0, len(list))
	for _, m := range list {
		infos = append(infos, MaterialInfo{
			ID:         m.ID,
			Name:       m.Name,
			CostPerKg:  m.CostUSD.Baseline,
			CO2PerKg:   m.CO2Kg.Baseline,
			CostSpread: m.CostUSD.Spread,
			CO2Spread:  m.CO2Kg.Spread,
			IsDefault:  m.ID == settings.DefaultMaterial,
		})
	}

	return jsonResult(map[string]any{
		"materials":           infos,
		"default_simulations": settings.DefaultSimulations,
		"max_simulations":     settings.MaxSimulations,
	})
}

func jsonResult(v any) (*sdk.CallToolResult, any, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return textResult(string(out)), nil, nil
}

func textResult(text string) *sdk.CallToolResult {
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: text}},
	}
}

// toolError reports caller mistakes as tool errors so the model can correct its input.
func toolError(tool string, err error) *sdk.CallToolResult {
	msg := err.Error()
	switch {
	case errors.Is(err, forecast.ErrInvalidPlan):
		msg = "The plan has no valid rows. Each row needs a period in YYYY-MM format (month 01-12) and a finite volumeTons >= 0. Details: " + msg
	case errors.Is(err, forecast.ErrUnknownMaterial):
		msg = "Unknown material. Call 'list_materials' to see the valid ids. Details: " + msg
	default:
		log.Error().Err(err).Str("tool", tool).Msg("Tool call failed")
	}
	return &sdk.CallToolResult{
		IsError: true,
		Content: []sdk.Content{&sdk.TextContent{Text: msg}},
	}
}
