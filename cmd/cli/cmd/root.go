// Package cmd provides the CLI commands for import-cost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"import-cost/core/output"
	"import-cost/internal/config"
	"import-cost/internal/errors"
	"import-cost/internal/logging"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	noColor bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "import-cost",
	Short: "Estimate the landed cost of imported products",
	Long: `import-cost calculates what a batch of imported products really costs:
product subtotal, tiered freight, 60% import tax and ICMS, with a per-unit
average and every figure shown in both currencies.

Examples:
  import-cost estimate --sample
  import-cost estimate quote.hcl --rate 0.847
  import-cost estimate quote.csv --format xlsx --output quote.xlsx
  import-cost freight 350
  import-cost serve --addr :8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logging.Sync()
		return exitCode(err)
	}
	logging.Sync()
	return 0
}

// exitCode distinguishes bad input from blocked calculations
func exitCode(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeValidation:
		return 3
	case errors.TypeInput, errors.TypeParsing, errors.TypeNotSupported, errors.TypeNotFound, errors.TypeConfig:
		return 2
	default:
		return 1
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, JSON or YAML (default is $HOME/.import-cost/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(freightCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(exitCode(err))
	}
	if noColor {
		cfg.Output.NoColor = true
	}
	config.Set(cfg)

	// Initialize logging
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// presenter builds the presenter from the configured symbols
func presenter(cfg *config.Config) output.Presenter {
	return output.Presenter{
		Source: cfg.Calculator.SourceSymbol,
		Target: cfg.Calculator.TargetSymbol,
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "import-cost version %s\n", Version)
	},
}
