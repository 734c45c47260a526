package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"ecopack-forecast/internal/forecast"
	"ecopack-forecast/internal/materials"
	"ecopack-forecast/internal/plan"
)

// APIResponse represents the standard response envelope.
type APIResponse struct {
	Status  int    `json:"status" example:"200"`
	Message string `json:"message" example:"OK"`
	Data    any    `json:"data,omitempty"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string         `json:"code,omitempty" example:"ERR_REQUIRED"`
	Field   string         `json:"field,omitempty" example:"material"`
	Message string         `json:"message,omitempty" example:"material is required"`
	Params  map[string]any `json:"params,omitempty"`
}

// Simulations is the requested trial count. Numbers and numeric strings are accepted;
// anything else leaves it unset so the configured default applies.
type Simulations struct {
	value int
	set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Simulations) UnmarshalJSON(data []byte) error {
	*s = Simulations{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return nil
		}
		data = []byte(text)
	}
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(data)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	// Saturate instead of overflowing; the service clamps to the cap anyway.
	f = math.Trunc(f)
	switch {
	case f > math.MaxInt32:
		f = math.MaxInt32
	case f < math.MinInt32:
		f = math.MinInt32
	}
	s.value, s.set = int(f), true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Simulations) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.value)), nil
}

// Ptr returns the requested count, or nil when none was given.
func (s Simulations) Ptr() *int {
	if !s.set {
		return nil
	}
	v := s.value
	return &v
}

// ForecastRequest is the body of POST /forecast.
type ForecastRequest struct {
	PlannedVolumes []plan.RawRow `json:"plannedVolumes" validate:"max=1200"`
	Simulations    Simulations   `json:"simulations"`
	Material       string        `json:"material" validate:"omitempty,max=64"`
	Seed           *uint64       `json:"seed,omitempty"`
}

func (r ForecastRequest) toService() forecast.Request {
	return forecast.Request{
		Rows:        r.PlannedVolumes,
		Simulations: r.Simulations.Ptr(),
		Material:    r.Material,
		Seed:        r.Seed,
	}
}

// CompareRequest is the body of POST /forecast/compare and its CSV export.
type CompareRequest struct {
	ScenarioA ForecastRequest `json:"scenarioA"`
	ScenarioB ForecastRequest `json:"scenarioB"`

	// Filename names the CSV attachment of the export endpoint.
	Filename string `json:"filename" default:"scenario_comparison.csv" validate:"max=128"`
}

// MaterialResponse describes one catalog entry.
type MaterialResponse struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	CostUSD materials.Rate `json:"cost_usd_per_kg"`
	CO2Kg   materials.Rate `json:"co2_kg_per_kg"`
	Default bool           `json:"default"`
}

// MaterialsResponse is the payload of GET /materials.
type MaterialsResponse struct {
	Materials          []MaterialResponse `json:"materials"`
	DefaultSimulations int                `json:"default_simulations"`
	MaxSimulations     int                `json:"max_simulations"`
}

// HealthResponse is the payload of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Materials int    `json:"materials"`
}
