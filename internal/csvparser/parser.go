// =============================================================================
// Payments Engine - CSV Parser Module
// =============================================================================
//
// This module reads the transaction log from CSV. The log is processed as a
// stream: records are decoded one at a time, in input order, so the engine
// never holds the whole file in memory.
//
// EXPECTED FORMAT:
//   type,       client, tx, amount
//   deposit,         1,  1,    1.0
//   withdrawal,      1,  4,    1.5
//   dispute,         1,  1,
//
//   - Column order is taken from the header row; "amount" may be omitted.
//   - Every field is whitespace-trimmed.
//   - Every row must have as many fields as the header.
//
// ERROR HANDLING:
//   Any structural problem (wrong arity, unknown type alias, unparsable id or
//   amount) is fatal and reported as a *ParseError with the row number.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payments-engine/internal/config"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// =============================================================================
// COLUMNS
// =============================================================================

// Header names recognised in the first row.
const (
	HeaderType   = "type"
	HeaderClient = "client"
	HeaderTx     = "tx"
	HeaderAmount = "amount"
)

// ErrMissingHeader is returned when a required column is absent.
var ErrMissingHeader = errors.New("missing required column")

// Columns holds the position of each known column. Amount is -1 when the
// log has no amount column.
type Columns struct {
	Type   int
	Client int
	Tx     int
	Amount int

	// Width is the number of header fields.
	Width int
}

// ResolveColumns locates the known columns in a header row.
func ResolveColumns(header []string) (Columns, error) {
	cols := Columns{Type: -1, Client: -1, Tx: -1, Amount: -1, Width: len(header)}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case HeaderType:
			cols.Type = i
		case HeaderClient:
			cols.Client = i
		case HeaderTx:
			cols.Tx = i
		case HeaderAmount:
			cols.Amount = i
		}
	}

	required := []struct {
		name string
		idx  int
	}{
		{HeaderType, cols.Type},
		{HeaderClient, cols.Client},
		{HeaderTx, cols.Tx},
	}
	for _, col := range required {
		if col.idx < 0 {
			return cols, &ParseError{Row: 1, Field: col.name, Err: ErrMissingHeader}
		}
	}

	return cols, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ParseError describes a fatal problem with one input row.
type ParseError struct {
	// Row is the 1-indexed row in the source, header included.
	Row int

	// Field is the column that failed, if any.
	Field string

	// Value is the offending raw value, if any.
	Value string

	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d, field '%s' (value: '%s'): %v", e.Row, e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ROW DECODING
// =============================================================================

// DecodeRow converts one row of raw fields into a TransactionRecord.
//
// PARAMETERS:
//   - cols: The resolved column layout.
//   - row: The raw fields. Rows shorter than the header are treated as
//     having empty trailing fields only when padShort is true.
//   - rowNumber: The 1-indexed source row, for error reporting.
//
// RETURNS:
//   - The decoded record.
//   - A *ParseError if the row is malformed.
func DecodeRow(cols Columns, row []string, rowNumber int, padShort bool) (types.TransactionRecord, error) {
	if len(row) > cols.Width || (len(row) < cols.Width && !padShort) {
		return types.TransactionRecord{}, &ParseError{
			Row: rowNumber,
			Err: fmt.Errorf("expected %d fields, found %d", cols.Width, len(row)),
		}
	}

	field := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	record := types.TransactionRecord{Row: rowNumber}

	raw := field(cols.Type)
	txType, err := types.ParseTransactionType(raw)
	if err != nil {
		return record, &ParseError{Row: rowNumber, Field: HeaderType, Value: raw, Err: err}
	}
	record.Type = txType

	raw = field(cols.Client)
	client, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return record, &ParseError{Row: rowNumber, Field: HeaderClient, Value: raw, Err: err}
	}
	record.Client = types.ClientID(client)

	raw = field(cols.Tx)
	tx, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return record, &ParseError{Row: rowNumber, Field: HeaderTx, Value: raw, Err: err}
	}
	record.Tx = types.TxID(tx)

	raw = field(cols.Amount)
	if raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return record, &ParseError{Row: rowNumber, Field: HeaderAmount, Value: raw, Err: err}
		}
		record.Amount = &amount
	}

	return record, nil
}

// =============================================================================
// STREAMING PARSER
// =============================================================================

// StreamingParser decodes transaction records one row at a time.
//
// USAGE:
//   parser, err := csvparser.Open(path, settings)
//   if err != nil {
//       return err
//   }
//   defer parser.Close()
//
//   for parser.Next() {
//       record := parser.Record()
//       // Process the record...
//   }
//
//   if err := parser.Err(); err != nil {
//       return err
//   }
type StreamingParser struct {
	closer  io.Closer
	reader  *csv.Reader
	columns Columns
	current types.TransactionRecord
	err     error
}

// Open opens a CSV file and prepares a streaming parser over it.
func Open(filePath string, settings config.CSVSettings) (*StreamingParser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	parser, err := NewStreamingParser(bufio.NewReader(file), settings)
	if err != nil {
		file.Close()
		return nil, err
	}

	parser.closer = file
	return parser, nil
}

// NewStreamingParser creates a parser reading from r and consumes the header.
func NewStreamingParser(r io.Reader, settings config.CSVSettings) (*StreamingParser, error) {
	comma, err := settings.Comma()
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	// Zero makes every row match the header width.
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header row: %w", err)
	}

	columns, err := ResolveColumns(header)
	if err != nil {
		return nil, err
	}

	return &StreamingParser{reader: reader, columns: columns}, nil
}

// Next advances to the next record. It returns false at end of input or on
// the first error; check Err afterwards.
func (p *StreamingParser) Next() bool {
	if p.err != nil {
		return false
	}

	row, err := p.reader.Read()
	if err == io.EOF {
		return false
	}

	if err != nil {
		row := 0
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			row = csvErr.StartLine
		}
		p.err = &ParseError{Row: row, Err: err}
		return false
	}

	line, _ := p.reader.FieldPos(0)

	record, err := DecodeRow(p.columns, row, line, false)
	if err != nil {
		p.err = err
		return false
	}

	p.current = record
	return true
}

// Record returns the current record.
func (p *StreamingParser) Record() types.TransactionRecord {
	return p.current
}

// Columns returns the resolved column layout.
func (p *StreamingParser) Columns() Columns {
	return p.columns
}

// Err returns the first error encountered, if any.
func (p *StreamingParser) Err() error {
	return p.err
}

// Close closes the underlying file, if the parser owns one.
func (p *StreamingParser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
