// =============================================================================
// Payments Engine - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the engine, including:
//   - Output file naming ({uuid} and {timestamp} placeholders)
//   - Rejection log generation
//   - Directory management
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timestampLayout is used for {timestamp} and for generated log names.
const timestampLayout = "20060102_150405"

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName expands placeholders in format.
//
// PLACEHOLDERS:
//   {uuid}      - A random UUID
//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//   {key}       - Any key present in params
//
// EXAMPLE:
//   format: "accounts_{timestamp}_{uuid}.csv"
//   result: "accounts_20240115_143022_550e8400-e29b-41d4-a716-446655440000.csv"
func GenerateOutputFileName(format string, params map[string]string) string {
	replacements := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", time.Now().Format(timestampLayout),
	}
	for key, value := range params {
		replacements = append(replacements, "{"+key+"}", value)
	}

	return strings.NewReplacer(replacements...).Replace(format)
}

// =============================================================================
// REJECTION LOG GENERATION
// =============================================================================

// RejectionLogEntry represents a single discarded transaction record.
type RejectionLogEntry struct {
	RowNumber int
	Type      string
	Client    uint16
	Tx        uint32
	Amount    string
	Reason    string
	Message   string
}

// WriteRejectionLog writes entries to a new log file in outputDir.
//
// PARAMETERS:
//   - entries: The rejected records.
//   - outputDir: The directory to write the log file.
//   - runID: Identifies the run in the file name and header.
//
// RETURNS:
//   - The path to the log file, or "" when there was nothing to write.
//   - An error if writing fails.
func WriteRejectionLog(entries []RejectionLogEntry, outputDir, runID string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	if err := EnsureDir(outputDir); err != nil {
		return "", err
	}

	logName := GenerateOutputFileName("rejections_{timestamp}_{run}.txt", map[string]string{"run": runID})
	logPath := filepath.Join(outputDir, logName)

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create rejection log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Payments Engine - Rejection Log\n"+
		"Run ID: %s\n"+
		"Generated: %s\n"+
		"Total Rejections: %d\n"+
		"================================================================================\n\n",
		runID,
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Rejection #%d\n"+
			"  Row Number:     %d\n"+
			"  Type:           %s\n"+
			"  Client:         %d\n"+
			"  Transaction ID: %d\n",
			i+1,
			entry.RowNumber,
			entry.Type,
			entry.Client,
			entry.Tx)

		if entry.Amount != "" {
			fmt.Fprintf(writer, "  Amount:         %s\n", entry.Amount)
		}
		fmt.Fprintf(writer, "  Reason:         %s\n", entry.Reason)
		if entry.Message != "" {
			fmt.Fprintf(writer, "  Message:        %s\n", entry.Message)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Rejection Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush rejection log: %w", err)
	}

	return logPath, nil
}
