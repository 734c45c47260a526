package simulation

import (
	"context"
	"errors"
	"math"
	"runtime"

	"ecopack-forecast/internal/plan"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSimulations matches the default trial count of the forecast endpoint.
	DefaultSimulations = 400

	// MaxSimulations is the hard upper bound on trials per period.
	MaxSimulations = 5000

	cancelCheckInterval = 256
)

// ErrEmptyPlan is returned when a plan has no periods to simulate.
var ErrEmptyPlan = errors.New("plan has no valid periods")

// Config controls a simulation run.
type Config struct {
	Simulations    int
	MaxSimulations int
	Workers        int
	Material       string
}

// ClampSimulations bounds n to [1, limit]. A non-positive limit means MaxSimulations.
func ClampSimulations(n, limit int) int {
	if limit <= 0 || limit > MaxSimulations {
		limit = MaxSimulations
	}
	if n < 1 {
		return 1
	}
	if n > limit {
		return limit
	}
	return n
}

func (c Config) normalized() Config {
	c.Simulations = ClampSimulations(c.Simulations, c.MaxSimulations)
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Engine performs the Monte-Carlo simulation of a plan.
type Engine struct {
	source Source
	cfg    Config
}

// NewEngine creates an engine drawing trials from source.
func NewEngine(source Source, cfg Config) *Engine {
	return &Engine{source: source, cfg: cfg.normalized()}
}

// Simulations returns the effective number of trials per period.
func (e *Engine) Simulations() int {
	return e.cfg.Simulations
}

// Run simulates every period of p and summarizes each period as soon as its trials are
// done, so at most Workers trial buffers are alive at a time. Periods are independent and
// run concurrently; the context is checked between periods and during long trial loops.
func (e *Engine) Run(ctx context.Context, p plan.Plan) (Forecast, error) {
	summaries, err := runPeriods(ctx, e, p, SummarizePeriod)
	if err != nil {
		return Forecast{}, err
	}
	return assemble(p, summaries, e.meta()), nil
}

// Simulate returns the full trial matrix, one PeriodTrials per period in plan order.
func (e *Engine) Simulate(ctx context.Context, p plan.Plan) ([]PeriodTrials, error) {
	return runPeriods(ctx, e, p, func(t PeriodTrials) PeriodTrials { return t })
}

func (e *Engine) meta() Meta {
	return Meta{Simulations: e.cfg.Simulations, Material: e.cfg.Material}
}

// runPeriods fans periods out over a bounded pool. Each worker owns its period's sampler
// and writes only its own slot of results.
func runPeriods[T any](ctx context.Context, e *Engine, p plan.Plan, reduce func(PeriodTrials) T) ([]T, error) {
	if p.Len() == 0 {
		return nil, ErrEmptyPlan
	}

	results := make([]T, p.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for i, entry := range p.Entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			trials, err := simulatePeriod(gctx, e.source.Stream(i), entry.VolumeTons, e.cfg.Simulations)
			if err != nil {
				return err
			}
			results[i] = reduce(trials)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped early without any worker observing the cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// simulatePeriod runs the trials of one period. Non-finite outcomes are discarded and
// negative ones clamped to zero.
func simulatePeriod(ctx context.Context, s Sampler, volumeTons float64, simulations int) (PeriodTrials, error) {
	t := PeriodTrials{
		Cost: make([]float64, 0, simulations),
		CO2:  make([]float64, 0, simulations),
	}

	for trial := 0; trial < simulations; trial++ {
		if trial%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return PeriodTrials{}, err
			}
		}

		o := s.Sample(volumeTons, trial)
		if !isFinite(o.Cost) || !isFinite(o.CO2) {
			continue
		}
		t.Cost = append(t.Cost, math.Max(o.Cost, 0))
		t.CO2 = append(t.CO2, math.Max(o.CO2, 0))
	}
	return t, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
