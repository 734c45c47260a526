package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"ecopack-forecast/cmd/plangen/engine"
)

func main() {
	scenario := flag.String("scenario", "flat", "Scenario to generate: flat, growth, seasonal")
	start := flag.String("start", time.Now().Format("2006-01"), "First month (YYYY-MM)")
	months := flag.Int("months", 12, "Number of months to generate")
	base := flag.Float64("base", 10, "Baseline monthly volume in tons")
	noise := flag.Float64("noise", 0.05, "Relative random jitter per month (0 disables)")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	out := flag.String("out", "-", "Output CSV file (- for stdout)")
	flag.Parse()

	startMonth, err := time.Parse("2006-01", *start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -start %q: %v\n", *start, err)
		os.Exit(1)
	}

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Start:    startMonth,
		Months:   *months,
		BaseTons: *base,
		Noise:    *noise,
		Seed:     *seed,
	}

	p, err := engine.Generate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate plan: %v\n", err)
		os.Exit(1)
	}

	if err := engine.Save(os.Stdout, *out, p); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save plan: %v\n", err)
		os.Exit(1)
	}

	if *out != "-" {
		fmt.Fprintf(os.Stderr, "Generated %d months (%s) to %s\n", p.Len(), cfg.Scenario, *out)
	}
}
