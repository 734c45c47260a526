package commands

import (
	"encoding/json"
	"fmt"

	"ecopack-forecast/internal/forecast"

	"github.com/spf13/cobra"
)

var forecastOpts struct {
	planPath    string
	simulations int
	material    string
	seed        uint64
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast a single plan and print the result as JSON",
	Example: `  ecopack-forecast forecast --plan plan.csv --simulations 1000 --material molded-pulp
  plangen -scenario seasonal | ecopack-forecast forecast --plan -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(cfg, nil)
		if err != nil {
			return err
		}

		req, err := forecastRequest(cmd, forecastOpts.planPath, forecastOpts.material)
		if err != nil {
			return err
		}
		res, err := svc.Forecast(cmd.Context(), req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Forecast)
	},
}

// forecastRequest builds a request from a plan file and the shared --simulations/--seed flags.
func forecastRequest(cmd *cobra.Command, path, material string) (forecast.Request, error) {
	rows, err := readPlan(path, cmd.InOrStdin())
	if err != nil {
		return forecast.Request{}, err
	}

	req := forecast.Request{Rows: rows, Material: material}
	if cmd.Flags().Changed("simulations") {
		n, _ := cmd.Flags().GetInt("simulations")
		req.Simulations = &n
	}
	if cmd.Flags().Changed("seed") {
		seed, err := cmd.Flags().GetUint64("seed")
		if err != nil {
			return forecast.Request{}, fmt.Errorf("read --seed: %w", err)
		}
		req.Seed = &seed
	}
	return req, nil
}

func init() {
	f := forecastCmd.Flags()
	f.StringVar(&forecastOpts.planPath, "plan", "", "plan file (.csv or .json), or - for CSV on stdin")
	f.IntVar(&forecastOpts.simulations, "simulations", 0, "Monte-Carlo trials per month (default from SIM_DEFAULT_SIMULATIONS)")
	f.StringVar(&forecastOpts.material, "material", "", "material id (default from DEFAULT_MATERIAL)")
	f.Uint64Var(&forecastOpts.seed, "seed", 0, "random seed for a reproducible run")
	_ = forecastCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(forecastCmd)
}
