package commands

import (
	"ecopack-forecast/internal/config"
	"ecopack-forecast/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "ecopack-forecast",
	Short: "EcoPack forecaster: Monte-Carlo cost and CO2 projections for packaging plans",
	Long: `Projects the monthly packaging cost (USD) and CO2 (kg) of a production plan with a
Monte-Carlo simulation over per-kg material factors, and compares two plans side by side.

Without a subcommand the HTTP API is started (same as "serve").`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		// Load configuration
		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}

		log.Debug().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("command", cmd.Name()).
			Msg("EcoPack forecaster starting")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.Version = Version + " (" + Commit + ", " + BuildDate + ")"
}
