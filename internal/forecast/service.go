package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecopack-forecast/internal/materials"
	"ecopack-forecast/internal/plan"
	"ecopack-forecast/internal/scenario"
	"ecopack-forecast/internal/simulation"

	"github.com/rs/zerolog/log"
)

var (
	// ErrInvalidPlan is returned when no row of a plan survives normalization.
	ErrInvalidPlan = errors.New("invalid plan: no valid (period, volumeTons) rows")

	// ErrUnknownMaterial is returned when a request names a material missing from the catalog.
	ErrUnknownMaterial = errors.New("unknown material")

	// ErrScenarioA and ErrScenarioB tag which side of a comparison failed.
	ErrScenarioA = errors.New("scenario A")
	ErrScenarioB = errors.New("scenario B")
)

// Metrics receives forecast outcomes. Implementations must be safe for concurrent use.
type Metrics interface {
	ObserveForecast(material string, periods, simulations int, duration time.Duration)
	RecordInvalidPlan()
	RecordDegeneratePeriods(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveForecast(string, int, int, time.Duration) {}
func (noopMetrics) RecordInvalidPlan() {}
func (noopMetrics) RecordDegeneratePeriods(int) {}

// Settings bounds what a request may ask for.
type Settings struct {
	DefaultSimulations int
	MaxSimulations     int
	Workers            int
	DefaultMaterial    string
}

// Request is one forecast to compute. A nil Simulations uses the default; a nil Seed
// draws fresh randomness.
type Request struct {
	Rows        []plan.RawRow
	Simulations *int
	Material    string
	Seed        *uint64
}

// Result pairs a forecast with the normalized plan it was computed for.
type Result struct {
	Plan     plan.Plan
	Forecast simulation.Forecast
}

// Scenario returns the result in the shape the comparator expects.
func (r Result) Scenario() scenario.Scenario {
	return scenario.Scenario{Plan: r.Plan, Forecast: r.Forecast}
}

// Service runs forecasts against a material catalog.
type Service struct {
	catalog  *materials.Catalog
	settings Settings
	metrics  Metrics
}

// NewService creates a forecast service. A nil metrics disables recording.
func NewService(catalog *materials.Catalog, settings Settings, metrics Metrics) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if settings.DefaultSimulations <= 0 {
		settings.DefaultSimulations = simulation.DefaultSimulations
	}
	if settings.MaxSimulations <= 0 {
		settings.MaxSimulations = simulation.MaxSimulations
	}
	if settings.DefaultMaterial == "" {
		settings.DefaultMaterial = materials.DefaultMaterialID
	}
	return &Service{catalog: catalog, settings: settings, metrics: metrics}
}

// Catalog returns the materials the service can forecast.
func (s *Service) Catalog() *materials.Catalog {
	return s.catalog
}

// Settings returns the effective limits.
func (s *Service) Settings() Settings {
	return s.settings
}

// Simulations resolves a requested trial count: nil means the default, anything else is
// clamped to [1, MaxSimulations].
func (s *Service) Simulations(requested *int) int {
	n := s.settings.DefaultSimulations
	if requested != nil {
		n = *requested
	}
	return simulation.ClampSimulations(n, s.settings.MaxSimulations)
}

// Forecast normalizes the plan and runs the simulation. An empty plan fails with
// ErrInvalidPlan before any sampling happens.
func (s *Service) Forecast(ctx context.Context, req Request) (Result, error) {
	p := plan.Normalize(req.Rows)
	if p.Len() == 0 {
		s.metrics.RecordInvalidPlan()
		return Result{}, fmt.Errorf("%w (%d rows received)", ErrInvalidPlan, len(req.Rows))
	}
	if dropped := len(req.Rows) - p.Len(); dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("kept", p.Len()).Msg("Plan rows dropped during normalization")
	}

	materialID := req.Material
	if materialID == "" {
		materialID = s.settings.DefaultMaterial
	}
	material, ok := s.catalog.Lookup(materialID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, materialID)
	}

	engine := simulation.NewEngine(
		simulation.NewTriangularSource(material, req.Seed),
		simulation.Config{
			Simulations:    s.Simulations(req.Simulations),
			MaxSimulations: s.settings.MaxSimulations,
			Workers:        s.settings.Workers,
			Material:       material.ID,
		},
	)

	start := time.Now()
	f, err := engine.Run(ctx, p)
	if err != nil {
		if errors.Is(err, simulation.ErrEmptyPlan) {
			return Result{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
		}
		return Result{}, fmt.Errorf("simulate plan: %w", err)
	}
	elapsed := time.Since(start)

	if n := len(f.Meta.DegeneratePeriods); n > 0 {
		log.Warn().
			Strs("periods", f.Meta.DegeneratePeriods).
			Str("material", material.ID).
			Msg("All trials failed for some periods; reporting zeros")
		s.metrics.RecordDegeneratePeriods(n)
	}

	s.metrics.ObserveForecast(material.ID, p.Len(), engine.Simulations(), elapsed)
	log.Debug().
		Str("material", material.ID).
		Int("periods", p.Len()).
		Int("simulations", engine.Simulations()).
		Dur("elapsed", elapsed).
		Msg("Forecast computed")

	return Result{Plan: p, Forecast: f}, nil
}

// Compare forecasts both scenarios independently and aligns them.
func (s *Service) Compare(ctx context.Context, a, b Request) (scenario.Comparison, error) {
	ra, err := s.Forecast(ctx, a)
	if err != nil {
		return scenario.Comparison{}, fmt.Errorf("%w: %w", ErrScenarioA, err)
	}
	rb, err := s.Forecast(ctx, b)
	if err != nil {
		return scenario.Comparison{}, fmt.Errorf("%w: %w", ErrScenarioB, err)
	}
	return scenario.Compare(ra.Scenario(), rb.Scenario()), nil
}
