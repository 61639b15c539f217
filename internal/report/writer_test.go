package report

import (
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/payments-engine/internal/types"
)

func sampleRows() []types.AccountSummary {
	return []types.AccountSummary{
		{
			Client:    1,
			Available: decimal.RequireFromString("1.5"),
			Held:      decimal.Zero,
			Total:     decimal.RequireFromString("1.5"),
		},
		{
			Client:    2,
			Available: decimal.RequireFromString("-50"),
			Held:      decimal.RequireFromString("0.0001"),
			Total:     decimal.RequireFromString("-49.9999"),
			Locked:    true,
		},
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for format, want := range map[string]Writer{
		"":     CSVWriter{},
		"csv":  CSVWriter{},
		"XLSX": XLSXWriter{Sheet: "Accounts"},
		"xml":  XMLWriter{Indent: "  "},
	} {
		got, err := New(format)
		require.NoError(t, err, format)
		assert.Equal(t, want, got, format)
	}

	_, err := New("pdf")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, sampleRows()))

	assert.Equal(t,
		"client,available,held,total,locked\n"+
			"1,1.5000,0.0000,1.5000,false\n"+
			"2,-50.0000,0.0001,-49.9999,true\n",
		buf.String())
}

func TestCSVWriter_NoAccounts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestXMLWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, XMLWriter{Indent: "  "}.Write(&buf, sampleRows()))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<accounts count="2">`)
	assert.Contains(t, out, `<account client="2">`)
	assert.Contains(t, out, `<available>-50.0000</available>`)
	assert.Contains(t, out, `<locked>true</locked>`)

	var doc xmlAccounts
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Accounts, 2)
	assert.Equal(t, "1.5000", doc.Accounts[0].Total)
}

func TestXLSXWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, XLSXWriter{Sheet: "Accounts"}.Write(&buf, sampleRows()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Accounts", f.GetSheetName(0))

	rows, err := f.GetRows("Accounts", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "1.5", rows[1][1])
	assert.Equal(t, "2", rows[2][0])
	assert.Equal(t, "-50", rows[2][1])

	locked, err := f.GetCellValue("Accounts", "E3")
	require.NoError(t, err)
	assert.Equal(t, "TRUE", locked)
}
