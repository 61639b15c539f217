// =============================================================================
// Payments Engine - Account Report Writers
// =============================================================================
//
// Renders the final account summaries. One row is written per client with
// the fields client, available, held, total and locked. Amounts are always
// rendered with four fractional digits.
//
// SUPPORTED FORMATS:
//   csv  - default; suitable for `engine tx.csv > accounts.csv`
//   xlsx - an Excel workbook with a single "Accounts" sheet
//   xml  - <accounts><account client="1">...</account></accounts>
//
// =============================================================================

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/payments-engine/internal/types"
)

// Column headers shared by every format.
var Columns = []string{"client", "available", "held", "total", "locked"}

// Writer renders account summaries to w.
type Writer interface {
	Write(w io.Writer, rows []types.AccountSummary) error
}

// Supported format names.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatXML  = "xml"
)

// New returns the writer for format.
func New(format string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return CSVWriter{}, nil
	case FormatXLSX:
		return XLSXWriter{Sheet: "Accounts"}, nil
	case FormatXML:
		return XMLWriter{Indent: "  "}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
