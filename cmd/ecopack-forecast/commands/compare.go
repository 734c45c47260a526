package commands

import (
	"encoding/json"
	"fmt"

	"ecopack-forecast/internal/scenario"

	"github.com/spf13/cobra"
)

var compareOpts struct {
	planA, planB         string
	materialA, materialB string
	simulations          int
	seed                 uint64
	format               string
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two plans and print the aligned table",
	Long: `Forecasts plan A and plan B independently and aligns them month by month. Months missing
from one plan are zero-filled; deltas are B minus A. The default output is the CSV export
(label, planA_volume, planA_cost, planA_co2, planB_volume, planB_cost, planB_co2, diff_cost, diff_co2).`,
	Example: `  ecopack-forecast compare --a current.csv --b proposed.csv --material-b molded-pulp --seed 7`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if compareOpts.format != "csv" && compareOpts.format != "json" {
			return fmt.Errorf("unknown --format %q (want csv or json)", compareOpts.format)
		}
		if compareOpts.planA == "-" && compareOpts.planB == "-" {
			return fmt.Errorf("only one of --a and --b can read from stdin")
		}

		svc, err := newService(cfg, nil)
		if err != nil {
			return err
		}

		reqA, err := forecastRequest(cmd, compareOpts.planA, compareOpts.materialA)
		if err != nil {
			return fmt.Errorf("plan A: %w", err)
		}
		reqB, err := forecastRequest(cmd, compareOpts.planB, compareOpts.materialB)
		if err != nil {
			return fmt.Errorf("plan B: %w", err)
		}

		cmp, err := svc.Compare(cmd.Context(), reqA, reqB)
		if err != nil {
			return err
		}

		if compareOpts.format == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cmp)
		}
		return scenario.WriteCSV(cmd.OutOrStdout(), cmp)
	},
}

func init() {
	f := compareCmd.Flags()
	f.StringVar(&compareOpts.planA, "a", "", "plan A file (.csv or .json)")
	f.StringVar(&compareOpts.planB, "b", "", "plan B file (.csv or .json)")
	f.StringVar(&compareOpts.materialA, "material-a", "", "material id for plan A (default from DEFAULT_MATERIAL)")
	f.StringVar(&compareOpts.materialB, "material-b", "", "material id for plan B (default from DEFAULT_MATERIAL)")
	f.IntVar(&compareOpts.simulations, "simulations", 0, "Monte-Carlo trials per month for both plans")
	f.Uint64Var(&compareOpts.seed, "seed", 0, "random seed used for both plans")
	f.StringVar(&compareOpts.format, "format", "csv", "output format: csv or json")
	_ = compareCmd.MarkFlagRequired("a")
	_ = compareCmd.MarkFlagRequired("b")
	rootCmd.AddCommand(compareCmd)
}
