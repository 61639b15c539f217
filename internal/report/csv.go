package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ginjaninja78/payments-engine/internal/precision"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// CSVWriter writes the report as comma separated values with a header row.
type CSVWriter struct{}

// Write implements Writer.
func (CSVWriter) Write(w io.Writer, rows []types.AccountSummary) error {
	out := csv.NewWriter(w)

	if err := out.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(Columns))
	for _, row := range rows {
		record[0] = strconv.FormatUint(uint64(row.Client), 10)
		record[1] = precision.Format(row.Available)
		record[2] = precision.Format(row.Held)
		record[3] = precision.Format(row.Total)
		record[4] = strconv.FormatBool(row.Locked)

		if err := out.Write(record); err != nil {
			return fmt.Errorf("failed to write client %d: %w", row.Client, err)
		}
	}

	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	return nil
}
