// =============================================================================
// Payments Engine - XLSX Transaction Log Parser
// =============================================================================
//
// Some partners export the transaction log as an Excel workbook instead of a
// CSV file. This module reads such a workbook row by row with the same
// contract as the CSV parser:
//
//   | Column A | Column B | Column C | Column D |
//   |----------|----------|----------|----------|
//   | type     | client   | tx       | amount   |
//   | deposit  | 1        | 1        | 1.0      |
//   | dispute  | 1        | 1        |          |
//
// Excel drops trailing empty cells, so rows shorter than the header are
// padded rather than rejected. Rows longer than the header and blank rows in
// the middle of the sheet are handled as in the CSV parser (fatal / skipped).
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payments-engine/internal/config"
	"github.com/ginjaninja78/payments-engine/internal/csvparser"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// Parser streams transaction records out of one worksheet.
type Parser struct {
	file    *excelize.File
	rows    *excelize.Rows
	columns csvparser.Columns
	rowNum  int
	current types.TransactionRecord
	err     error
}

// Open opens the workbook at path and positions the parser after the header
// row of the configured sheet (or the first sheet when none is configured).
func Open(path string, settings config.XLSXSettings) (*Parser, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	parser, err := newParser(f, settings)
	if err != nil {
		f.Close()
		return nil, err
	}

	return parser, nil
}

func newParser(f *excelize.File, settings config.XLSXSettings) (*Parser, error) {
	sheet := settings.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found", sheet)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	p := &Parser{file: f, rows: rows}

	header, ok := p.nextRow()
	if !ok {
		rows.Close()
		if p.err != nil {
			return nil, p.err
		}
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns, err := csvparser.ResolveColumns(header)
	if err != nil {
		rows.Close()
		return nil, err
	}
	p.columns = columns

	return p, nil
}

// nextRow returns the next non-blank row.
func (p *Parser) nextRow() ([]string, bool) {
	for p.rows.Next() {
		p.rowNum++

		row, err := p.rows.Columns()
		if err != nil {
			p.err = &csvparser.ParseError{Row: p.rowNum, Err: err}
			return nil, false
		}

		if isRowEmpty(row) {
			continue
		}

		return row, true
	}

	if err := p.rows.Error(); err != nil {
		p.err = fmt.Errorf("failed to read rows: %w", err)
	}

	return nil, false
}

// Next advances to the next record. It returns false at end of sheet or on
// the first error; check Err afterwards.
func (p *Parser) Next() bool {
	if p.err != nil {
		return false
	}

	row, ok := p.nextRow()
	if !ok {
		return false
	}

	record, err := csvparser.DecodeRow(p.columns, row, p.rowNum, true)
	if err != nil {
		p.err = err
		return false
	}

	p.current = record
	return true
}

// Record returns the current record.
func (p *Parser) Record() types.TransactionRecord {
	return p.current
}

// Err returns the first error encountered, if any.
func (p *Parser) Err() error {
	return p.err
}

// Close releases the row iterator and the workbook.
func (p *Parser) Close() error {
	if err := p.rows.Close(); err != nil {
		p.file.Close()
		return err
	}
	return p.file.Close()
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
