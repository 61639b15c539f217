// =============================================================================
// Payments Engine - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Given a transaction
// log, the root command processes it directly so the classic invocation
// keeps working:
//
//   engine transactions.csv > accounts.csv
//
// COBRA CLI STRUCTURE:
//   rootCmd (engine [file])
//   ├── processCmd (engine process --file ...)
//   └── versionCmd (engine version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payments-engine/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging, which includes every rejected record.
var verbose bool

// outputFormat overrides output_format from the configuration.
var outputFormat string

// outputFile overrides output_file from the configuration.
var outputFile string

// rejectionsDir overrides rejections_dir from the configuration.
var rejectionsDir string

// sheet overrides xlsx.sheet from the configuration.
var sheet string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "engine [transactions.csv]",
	Short: "Payments Engine - Replay a transaction log into client account balances",
	Long: `Payments Engine reads a log of deposits, withdrawals, disputes, resolutions
and chargebacks, applies them in order to per-client accounts, and writes the
final state of every account.

Output columns: client, available, held, total, locked.

Example Usage:
  engine transactions.csv > accounts.csv     # CSV report on stdout
  engine transactions.xlsx --format xlsx -o accounts.xlsx
  engine process --file transactions.csv --rejections-dir ./rejections`,

	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runProcess(processOptionsFromFlags(cmd, args[0]), cmd.OutOrStdout())
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. Any fatal error exits with status 1;
// rejected transactions never do.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", config.DefaultConfigFile,
		"Path to the configuration file (optional unless given explicitly)")

	flags.BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging, including every rejected transaction")

	flags.StringVar(&outputFormat, "format", "",
		"Report format: csv, xlsx or xml (default from config, else csv)")

	flags.StringVarP(&outputFile, "output", "o", "",
		"Write the report to this file instead of stdout ({uuid} and {timestamp} are expanded)")

	flags.StringVar(&rejectionsDir, "rejections-dir", "",
		"Write a log of rejected transactions to this directory")

	flags.StringVar(&sheet, "sheet", "",
		"Worksheet to read when the input is an .xlsx workbook")
}
