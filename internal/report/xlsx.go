package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payments-engine/internal/types"
)

// amountFormat shows four fractional digits in the amount columns.
const amountFormat = "0.0000"

// XLSXWriter writes the report as an Excel workbook.
type XLSXWriter struct {
	// Sheet is the name of the worksheet holding the accounts.
	Sheet string
}

// Write implements Writer.
func (x XLSXWriter) Write(w io.Writer, rows []types.AccountSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := x.Sheet
	if sheet == "" {
		sheet = "Accounts"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		// Amounts are already normalized; the float form only feeds the cell value.
		values := []interface{}{
			int(row.Client),
			row.Available.InexactFloat64(),
			row.Held.InexactFloat64(),
			row.Total.InexactFloat64(),
			row.Locked,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write client %d: %w", row.Client, err)
		}
	}

	numFmt := amountFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}
	if err := f.SetColStyle(sheet, "B:D", style); err != nil {
		return fmt.Errorf("failed to style amount columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}
