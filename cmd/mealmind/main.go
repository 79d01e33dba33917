// mealmind analyzes meal photos through a ten-agent pipeline: vision,
// nutrition estimation, personalization, wellness coaching, and six
// behavioral heuristics over the logged history.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mealmind/internal/config"
	"mealmind/internal/logging"
)

var (
	cfgPath string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mealmind",
	Short: "mealmind - meal photo analysis with behavioral coaching",
	Long: `mealmind analyzes meal photos and logging history.

Each analysis runs a pipeline of ten agents: a vision interpreter, a
nutrition reasoner anchored on USDA FDC and Open Food Facts data, a
personalization agent, a wellness coach with a safety filter, and six
heuristic agents covering drift detection, next actions, goal alignment,
strategy adaptation, energy interventions, and weekly reflections.

Results are wellness guidance, not medical advice.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "mealmind.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(barcodeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(tagEnergyCmd)
	rootCmd.AddCommand(reflectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
