package engine

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"ecopack-forecast/internal/plan"
)

type GeneratorConfig struct {
	Scenario string    // "flat", "growth" or "seasonal"
	Start    time.Time // first month; only year and month are used
	Months   int
	BaseTons float64
	Noise    float64 // relative jitter, e.g. 0.05 for +/-5%
	Seed     uint64
}

// Generate builds a synthetic monthly plan.
func Generate(cfg GeneratorConfig) (plan.Plan, error) {
	if cfg.Months <= 0 {
		return plan.Plan{}, fmt.Errorf("months must be positive, got %d", cfg.Months)
	}
	if cfg.BaseTons < 0 || math.IsNaN(cfg.BaseTons) || math.IsInf(cfg.BaseTons, 0) {
		return plan.Plan{}, fmt.Errorf("base volume must be a finite number >= 0, got %v", cfg.BaseTons)
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Now()
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, 0x9e3779b97f4a7c15))
	first := time.Date(cfg.Start.Year(), cfg.Start.Month(), 1, 0, 0, 0, 0, time.UTC)

	entries := make([]plan.PeriodVolume, 0, cfg.Months)
	for i := 0; i < cfg.Months; i++ {
		month := first.AddDate(0, i, 0)

		v := cfg.BaseTons
		switch cfg.Scenario {
		case "flat", "":
		case "growth":
			// 2% compounding per month
			v *= math.Pow(1.02, float64(i))
		case "seasonal":
			// Peak in Q4 for holiday shipping, trough in Q1
			phase := 2 * math.Pi * float64(int(month.Month())-10) / 12
			v *= 1 + 0.3*math.Cos(phase)
		default:
			return plan.Plan{}, fmt.Errorf("unknown scenario %q (want flat, growth or seasonal)", cfg.Scenario)
		}

		if cfg.Noise > 0 {
			v *= 1 + cfg.Noise*(2*rng.Float64()-1)
		}
		v = math.Max(0, math.Round(v*1000)/1000)

		entries = append(entries, plan.PeriodVolume{Period: month.Format("2006-01"), VolumeTons: v})
	}

	return plan.Normalize(plan.FromVolumes(entries)), nil
}

// Save writes p as CSV to path, or to w when path is "" or "-".
func Save(w io.Writer, path string, p plan.Plan) error {
	if path == "" || path == "-" {
		return plan.WriteCSV(w, p)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := plan.WriteCSV(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
