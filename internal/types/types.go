// =============================================================================
// Payments Engine - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser / xlsxparser (producers of TransactionRecord)
//   - engine (consumer of TransactionRecord, producer of AccountSummary)
//   - report (consumer of AccountSummary)
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID identifies a client account. Input ids are unsigned 16-bit.
type ClientID = uint16

// TxID identifies a transaction within a client's ledger. Input ids are
// unsigned 32-bit.
type TxID = uint32

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// TransactionType is the closed set of operations a record can carry.
type TransactionType int

const (
	// Deposit credits the client's available funds.
	Deposit TransactionType = iota + 1

	// Withdraw debits the client's available funds.
	Withdraw

	// Dispute moves a prior transaction's amount from available to held.
	Dispute

	// Resolve releases a disputed amount back to available.
	Resolve

	// Chargeback writes off a disputed amount and locks the account.
	Chargeback
)

// ErrUnknownTransactionType is returned when a type column does not match
// any accepted alias. It is always a fatal input error.
var ErrUnknownTransactionType = errors.New("unknown transaction type")

// transactionTypeAliases maps every accepted textual alias to its type.
// Matching is exact after whitespace trimming.
var transactionTypeAliases = map[string]TransactionType{
	"DEPOSIT":    Deposit,
	"deposit":    Deposit,
	"WITHDRAW":   Withdraw,
	"withdrawal": Withdraw,
	"DISPUTE":    Dispute,
	"dispute":    Dispute,
	"RESOLVE":    Resolve,
	"resolve":    Resolve,
	"CHARGEBACK": Chargeback,
	"chargeback": Chargeback,
}

// ParseTransactionType converts a textual alias into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	t, ok := transactionTypeAliases[strings.TrimSpace(value)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTransactionType, value)
	}
	return t, nil
}

// String returns the canonical lower-case name of the type.
func (t TransactionType) String() string {
	switch t {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdrawal"
	case Dispute:
		return "dispute"
	case Resolve:
		return "resolve"
	case Chargeback:
		return "chargeback"
	default:
		return fmt.Sprintf("TransactionType(%d)", int(t))
	}
}

// RequiresAmount reports whether records of this type carry an amount.
func (t TransactionType) RequiresAmount() bool {
	return t == Deposit || t == Withdraw
}

// =============================================================================
// RECORDS
// =============================================================================

// TransactionRecord is one parsed row of the input log.
type TransactionRecord struct {
	// Type is the operation to apply.
	Type TransactionType

	// Client is the account the record addresses.
	Client ClientID

	// Tx is the transaction id. For disputes, resolves and chargebacks it
	// references a prior deposit or withdrawal.
	Tx TxID

	// Amount is present for deposits and withdrawals only.
	Amount *decimal.Decimal

	// Row is the 1-indexed source row, for error reporting.
	Row int
}

// AccountSummary is the final, normalized state of one client account.
type AccountSummary struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}
