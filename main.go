// =============================================================================
// Payments Engine - Main Entry Point
// =============================================================================
//
// USAGE:
//   engine transactions.csv > accounts.csv
//   engine process --file transactions.xlsx --format xml
//   engine version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/account     : per-client account state machine
//   - internal/engine      : routes records to accounts, renders summaries
//   - internal/precision   : four-digit fixed-point rounding
//   - internal/csvparser   : streaming CSV transaction log reader
//   - internal/xlsxparser  : XLSX transaction log reader
//   - internal/report      : csv / xlsx / xml account report writers
//   - internal/config      : YAML configuration
//   - internal/logging     : zap logger construction
//   - pkg/utils            : output naming and rejection logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payments-engine/cmd"
)

func main() {
	cmd.Execute()
}
