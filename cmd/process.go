// =============================================================================
// Payments Engine - Process Command
// =============================================================================
//
// This file defines the 'process' command and the pipeline shared with the
// root command.
//
// COMMAND USAGE:
//   engine process --file transactions.csv [flags]
//
// PROCESSING PIPELINE:
//   1. Load configuration and apply flag overrides
//   2. Build the logger (stderr or log file, tagged with a run id)
//   3. Open the transaction log (.xlsx workbook or CSV)
//   4. Replay every record through the engine, in order
//   5. Write the account report (stdout or --output)
//   6. Write the rejection log, if requested
//
// Only structural errors (unreadable input, malformed rows, unwritable
// output) fail the run. Rejected transactions are logged and discarded.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payments-engine/internal/config"
	"github.com/ginjaninja78/payments-engine/internal/csvparser"
	"github.com/ginjaninja78/payments-engine/internal/engine"
	"github.com/ginjaninja78/payments-engine/internal/logging"
	"github.com/ginjaninja78/payments-engine/internal/report"
	"github.com/ginjaninja78/payments-engine/internal/xlsxparser"
	"github.com/ginjaninja78/payments-engine/pkg/utils"
)

// filePath is the transaction log to process (used with 'process').
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a transaction log and write the account report",
	Long: `The process command replays a transaction log through the payments engine
and writes one row per client with its available, held and total funds and
whether the account is locked.

The log may be a CSV file or an .xlsx workbook. Records that break a business
rule (invalid amount, insufficient funds, unknown or undisputed transaction,
locked account) are discarded; the run still succeeds.`,

	Args: cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		input := filePath
		if input == "" && len(args) == 1 {
			input = args[0]
		}
		if input == "" {
			return fmt.Errorf("no transaction log given (use --file)")
		}
		return runProcess(processOptionsFromFlags(cmd, input), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&filePath, "file", "",
		"Path to the transaction log (CSV or .xlsx)")
}

// =============================================================================
// OPTIONS
// =============================================================================

// processOptions carries everything a run needs, independent of cobra.
type processOptions struct {
	Input          string
	ConfigFile     string
	ConfigRequired bool
	Verbose        bool
	Format         string
	Output         string
	RejectionsDir  string
	Sheet          string
}

func processOptionsFromFlags(cmd *cobra.Command, input string) processOptions {
	return processOptions{
		Input:          input,
		ConfigFile:     cfgFile,
		ConfigRequired: cmd.Flags().Changed("config"),
		Verbose:        verbose,
		Format:         outputFormat,
		Output:         outputFile,
		RejectionsDir:  rejectionsDir,
		Sheet:          sheet,
	}
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig(opts processOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile, opts.ConfigRequired)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if opts.Format != "" {
		cfg.OutputFormat = strings.ToLower(opts.Format)
	}
	if opts.Output != "" {
		cfg.OutputFile = opts.Output
	}
	if opts.RejectionsDir != "" {
		cfg.RejectionsDir = opts.RejectionsDir
	}
	if opts.Sheet != "" {
		cfg.XLSX.Sheet = opts.Sheet
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// transactionSource is a record source that must be closed after use.
type transactionSource interface {
	engine.Source
	Close() error
}

// runProcess replays the log named in opts and writes the report to stdout
// unless an output file is configured.
func runProcess(opts processOptions, stdout io.Writer) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: CONFIGURATION AND LOGGING
	// =========================================================================

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	runID := uuid.New().String()

	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		RunID:  runID,
	})
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	writer, err := report.New(cfg.OutputFormat)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: REPLAY THE TRANSACTION LOG
	// =========================================================================

	src, err := openSource(opts.Input, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", opts.Input, err)
	}
	defer src.Close()

	logger.Info("processing transaction log", zap.String("input", opts.Input))

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if cfg.RejectionsDir != "" {
		engineOpts = append(engineOpts, engine.WithRejections())
	}
	eng := engine.New(engineOpts...)

	stats, err := eng.Run(src)
	if err != nil {
		logger.Error("transaction log is malformed", zap.Error(err))
		return err
	}

	// =========================================================================
	// STEP 3: WRITE THE REPORT
	// =========================================================================

	outputPath, err := writeReport(writer, eng, cfg.OutputFile, stdout)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: WRITE THE REJECTION LOG
	// =========================================================================

	if cfg.RejectionsDir != "" {
		logPath, err := utils.WriteRejectionLog(rejectionEntries(eng.Rejections()), cfg.RejectionsDir, runID)
		if err != nil {
			return err
		}
		if logPath != "" {
			logger.Info("wrote rejection log", zap.String("path", logPath))
		}
	}

	logger.Info("processing complete",
		zap.Int("records", stats.Records),
		zap.Int("applied", stats.Applied),
		zap.Int("rejected", stats.Rejected),
		zap.Int("skipped_locked", stats.Skipped),
		zap.Int("clients", stats.Clients),
		zap.Any("rejections_by_reason", stats.ByReason),
		zap.String("output", outputPath),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// openSource picks the parser from the file extension.
func openSource(path string, cfg *config.Config) (transactionSource, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		parser, err := xlsxparser.Open(path, cfg.XLSX)
		if err != nil {
			return nil, err
		}
		return parser, nil
	}

	parser, err := csvparser.Open(path, cfg.CSV)
	if err != nil {
		return nil, err
	}
	return parser, nil
}

// writeReport renders the summaries to the output file, or to stdout when
// none is configured. It returns where the report went.
func writeReport(writer report.Writer, eng *engine.Engine, output string, stdout io.Writer) (string, error) {
	if output == "" {
		if err := writer.Write(stdout, eng.Summaries()); err != nil {
			return "", fmt.Errorf("failed to write report: %w", err)
		}
		return "stdout", nil
	}

	path := utils.GenerateOutputFileName(output, nil)
	if dir := filepath.Dir(path); dir != "." {
		if err := utils.EnsureDir(dir); err != nil {
			return "", err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}

	if err := writer.Write(file, eng.Summaries()); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}

	return path, nil
}

// rejectionEntries converts engine rejections into rejection log entries.
func rejectionEntries(rejections []engine.Rejection) []utils.RejectionLogEntry {
	entries := make([]utils.RejectionLogEntry, 0, len(rejections))
	for _, r := range rejections {
		entry := utils.RejectionLogEntry{
			RowNumber: r.Record.Row,
			Type:      r.Record.Type.String(),
			Client:    r.Record.Client,
			Tx:        r.Record.Tx,
			Reason:    engine.Reason(r.Err),
			Message:   r.Err.Error(),
		}
		if r.Record.Amount != nil {
			entry.Amount = r.Record.Amount.String()
		}
		entries = append(entries, entry)
	}
	return entries
}
