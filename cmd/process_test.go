package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payments-engine/internal/types"
)

const sampleLog = `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
deposit, 3, 6, 50.0
dispute, 3, 6,
chargeback, 3, 6,
deposit, 3, 7, 10.0
dispute, 4, 99,
`

// testOptions returns options that keep logs out of the test output.
func testOptions(t *testing.T, input string) processOptions {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "log_level: debug\nlog_format: json\nlog_file: " + filepath.Join(dir, "engine.log") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	return processOptions{Input: input, ConfigFile: cfgPath, ConfigRequired: true}
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestRunProcess_CSVToStdout(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, runProcess(testOptions(t, writeInput(t, "tx.csv", sampleLog)), &out))

	assert.Equal(t,
		"client,available,held,total,locked\n"+
			"1,1.5000,0.0000,1.5000,false\n"+
			"2,2.0000,0.0000,2.0000,false\n"+
			"3,0.0000,0.0000,0.0000,true\n"+
			"4,0.0000,0.0000,0.0000,false\n",
		out.String())
}

func TestRunProcess_MalformedLogIsFatal(t *testing.T) {
	t.Parallel()

	input := writeInput(t, "tx.csv", "type,client,tx,amount\ndeposit,1,1,1.0\nrefund,1,2,1.0\n")

	var out bytes.Buffer
	err := runProcess(testOptions(t, input), &out)

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownTransactionType)
	assert.Empty(t, out.String(), "no report is written for a failed run")
}

func TestRunProcess_MissingInput(t *testing.T) {
	t.Parallel()

	err := runProcess(testOptions(t, filepath.Join(t.TempDir(), "missing.csv")), &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to open")
}

func TestRunProcess_ExplicitConfigMustExist(t *testing.T) {
	t.Parallel()

	opts := processOptions{
		Input:          writeInput(t, "tx.csv", sampleLog),
		ConfigFile:     filepath.Join(t.TempDir(), "missing.yaml"),
		ConfigRequired: true,
	}

	err := runProcess(opts, &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestRunProcess_XMLToFileWithRejections(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	opts := testOptions(t, writeInput(t, "tx.csv", sampleLog))
	opts.Format = "xml"
	opts.Output = filepath.Join(outDir, "reports", "accounts.xml")
	opts.RejectionsDir = filepath.Join(outDir, "rejections")

	var out bytes.Buffer
	require.NoError(t, runProcess(opts, &out))
	assert.Empty(t, out.String())

	data, err := os.ReadFile(opts.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<account client="3">`)
	assert.Contains(t, string(data), `<locked>true</locked>`)

	logs, err := filepath.Glob(filepath.Join(opts.RejectionsDir, "rejections_*.txt"))
	require.NoError(t, err)
	require.Len(t, logs, 1)

	content, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "Total Rejections: 3")
	assert.Contains(t, string(content), "insufficient_funds")
	assert.Contains(t, string(content), "account_locked")
	assert.Contains(t, string(content), "transaction_not_found")
}

func TestRunProcess_XLSXInput(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"type", "client", "tx", "amount"},
		{"deposit", 7, 1, "10.12345"},
		{"withdrawal", 7, 2, "0.1234"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	input := filepath.Join(t.TempDir(), "tx.xlsx")
	require.NoError(t, f.SaveAs(input))
	require.NoError(t, f.Close())

	var out bytes.Buffer
	require.NoError(t, runProcess(testOptions(t, input), &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "7,10.0001,0.0000,10.0001,false", lines[1])
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(processOptions{
		Verbose:       true,
		Format:        "XLSX",
		Output:        "out.xlsx",
		RejectionsDir: "rej",
		Sheet:         "Log",
	})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "xlsx", cfg.OutputFormat)
	assert.Equal(t, "out.xlsx", cfg.OutputFile)
	assert.Equal(t, "rej", cfg.RejectionsDir)
	assert.Equal(t, "Log", cfg.XLSX.Sheet)

	_, err = loadConfig(processOptions{Format: "pdf"})
	assert.ErrorContains(t, err, "unsupported output_format")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)

	assert.Contains(t, out.String(), "Payments Engine")
	assert.Contains(t, out.String(), "Version:    "+Version)
}
