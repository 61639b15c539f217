package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/payments-engine/internal/config"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

func readAll(t *testing.T, input string, settings config.CSVSettings) ([]types.TransactionRecord, error) {
	t.Helper()

	parser, err := NewStreamingParser(strings.NewReader(input), settings)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	var records []types.TransactionRecord
	for parser.Next() {
		records = append(records, parser.Record())
	}

	return records, parser.Err()
}

func TestStreamingParser_ValidLog(t *testing.T) {
	t.Parallel()

	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"deposit, 2, 2, 2.0\n" +
		"  withdrawal ,1,4,1.5\n" +
		"dispute, 1, 1,\n" +
		"CHARGEBACK, 65535, 4294967295,\n"

	records, err := readAll(t, input, config.CSVSettings{})
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, types.Deposit, records[0].Type)
	assert.Equal(t, types.ClientID(1), records[0].Client)
	assert.Equal(t, types.TxID(1), records[0].Tx)
	require.NotNil(t, records[0].Amount)
	assert.True(t, records[0].Amount.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 2, records[0].Row)

	assert.Equal(t, types.Withdraw, records[2].Type)
	assert.True(t, records[2].Amount.Equal(decimal.RequireFromString("1.5")))

	assert.Equal(t, types.Dispute, records[3].Type)
	assert.Nil(t, records[3].Amount)

	assert.Equal(t, types.Chargeback, records[4].Type)
	assert.Equal(t, types.ClientID(65535), records[4].Client)
	assert.Equal(t, types.TxID(4294967295), records[4].Tx)
	assert.Equal(t, 6, records[4].Row)
}

func TestStreamingParser_ReorderedColumnsWithoutAmount(t *testing.T) {
	t.Parallel()

	input := "tx|type|client\n7|dispute|3\n"

	records, err := readAll(t, input, config.CSVSettings{Delimiter: "pipe"})
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, types.Dispute, records[0].Type)
	assert.Equal(t, types.ClientID(3), records[0].Client)
	assert.Equal(t, types.TxID(7), records[0].Tx)
	assert.Nil(t, records[0].Amount)
}

func TestStreamingParser_FatalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		field string
		row   int
	}{
		{
			name:  "unknown type",
			input: "type,client,tx,amount\ndeposit,1,1,1.0\ntransfer,1,2,1.0\n",
			field: HeaderType,
			row:   3,
		},
		{
			name:  "alias is case sensitive",
			input: "type,client,tx,amount\nDeposit,1,1,1.0\n",
			field: HeaderType,
			row:   2,
		},
		{
			name:  "client out of range",
			input: "type,client,tx,amount\ndeposit,65536,1,1.0\n",
			field: HeaderClient,
			row:   2,
		},
		{
			name:  "negative tx",
			input: "type,client,tx,amount\ndeposit,1,-1,1.0\n",
			field: HeaderTx,
			row:   2,
		},
		{
			name:  "bad amount",
			input: "type,client,tx,amount\ndeposit,1,1,ten\n",
			field: HeaderAmount,
			row:   2,
		},
		{
			name:  "wrong arity",
			input: "type,client,tx,amount\ndispute,1,1\n",
			row:   2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := readAll(t, tt.input, config.CSVSettings{})
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, tt.field, parseErr.Field)
			assert.Equal(t, tt.row, parseErr.Row)
		})
	}
}

func TestStreamingParser_UnknownTypeIsSentinel(t *testing.T) {
	t.Parallel()

	_, err := readAll(t, "type,client,tx,amount\nrefund,1,1,1\n", config.CSVSettings{})
	assert.ErrorIs(t, err, types.ErrUnknownTransactionType)
}

func TestNewStreamingParser_HeaderErrors(t *testing.T) {
	t.Parallel()

	_, err := NewStreamingParser(strings.NewReader(""), config.CSVSettings{})
	assert.ErrorContains(t, err, "empty")

	_, err = NewStreamingParser(strings.NewReader("type,tx,amount\n"), config.CSVSettings{})
	assert.ErrorIs(t, err, ErrMissingHeader)
	assert.ErrorContains(t, err, "client")
}

func TestOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte("type,client,tx,amount\ndeposit,1,1,2.5\n"), 0o644))

	parser, err := Open(path, config.CSVSettings{})
	require.NoError(t, err)
	defer parser.Close()

	require.True(t, parser.Next())
	assert.Equal(t, types.Deposit, parser.Record().Type)
	assert.False(t, parser.Next())
	assert.NoError(t, parser.Err())

	_, err = Open(filepath.Join(t.TempDir(), "missing.csv"), config.CSVSettings{})
	assert.ErrorContains(t, err, "failed to open file")
}

func TestDecodeRow_PadShort(t *testing.T) {
	t.Parallel()

	cols, err := ResolveColumns([]string{"type", "client", "tx", "amount"})
	require.NoError(t, err)

	record, err := DecodeRow(cols, []string{"resolve", "4", "9"}, 3, true)
	require.NoError(t, err)
	assert.Equal(t, types.Resolve, record.Type)
	assert.Nil(t, record.Amount)

	_, err = DecodeRow(cols, []string{"resolve", "4", "9", "", "extra"}, 3, true)
	assert.ErrorContains(t, err, "expected 4 fields, found 5")
}
