// =============================================================================
// Payments Engine - Client Account State Machine
// =============================================================================
//
// This package owns the per-client account state and the five transitions
// that mutate it:
//
//   | Operation  | available | held      | locked | ledger entry             |
//   |------------|-----------|-----------|--------|--------------------------|
//   | deposit    | + amount  |           |        | inserted                 |
//   | withdraw   | - amount  |           |        | inserted                 |
//   | dispute    | - entry   | + entry   |        | under_dispute = true     |
//   | resolve    | + entry   | - entry   |        | (flag left as is)        |
//   | chargeback |           | - entry   | true   | under_dispute = false    |
//
// Every operation returns nil or a *TransactionError wrapping one of the
// sentinel failure kinds. A failed operation never mutates the state.
//
// CALLER OBLIGATION:
//   The state machine does not guard itself against calls after a lockout.
//   Callers must check Locked before dispatching a transaction.
//
// =============================================================================

package account

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/payments-engine/internal/precision"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

// =============================================================================
// FAILURE KINDS
// =============================================================================

var (
	// ErrInvalidAmount is returned when a normalized amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive and non-zero")

	// ErrInsufficientFunds is returned when a withdrawal exceeds available funds.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTransactionNotFound is returned when a referenced tx is not in the ledger.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNotDisputed is returned when resolving or charging back an entry
	// that is not under dispute.
	ErrNotDisputed = errors.New("transaction is not under dispute")
)

// TransactionError describes a rejected transition.
type TransactionError struct {
	// Op is the rejected operation.
	Op types.TransactionType

	// Tx is the transaction id the operation addressed.
	Tx types.TxID

	// Err is one of the sentinel failure kinds.
	Err error
}

// Error implements the error interface.
func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s %d rejected: %v", e.Op, e.Tx, e.Err)
}

// Unwrap exposes the failure kind to errors.Is.
func (e *TransactionError) Unwrap() error {
	return e.Err
}

func reject(op types.TransactionType, tx types.TxID, err error) error {
	return &TransactionError{Op: op, Tx: tx, Err: err}
}

// =============================================================================
// STATE
// =============================================================================

// TransactionMeta is the ledger record of one deposit or withdrawal.
type TransactionMeta struct {
	// Amount is the normalized amount of the original transaction.
	Amount decimal.Decimal

	// UnderDispute is set by a dispute and cleared by a chargeback.
	UnderDispute bool
}

// State is the mutable account of a single client.
type State struct {
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool

	// Ledger maps transaction ids to deposits and withdrawals seen for this client.
	Ledger map[types.TxID]*TransactionMeta
}

// New returns an empty, unlocked account.
func New() *State {
	return &State{
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Ledger:    make(map[types.TxID]*TransactionMeta),
	}
}

// Total is available plus held. It is never stored.
func (s *State) Total() decimal.Decimal {
	return s.Available.Add(s.Held)
}

// Summary returns the normalized output row for this account.
func (s *State) Summary(client types.ClientID) types.AccountSummary {
	available := precision.Normalize(s.Available)
	held := precision.Normalize(s.Held)

	return types.AccountSummary{
		Client:    client,
		Available: available,
		Held:      held,
		Total:     precision.Normalize(available.Add(held)),
		Locked:    s.Locked,
	}
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Deposit credits amount to the available funds and records it in the ledger.
// An existing ledger entry with the same id is overwritten.
func (s *State) Deposit(tx types.TxID, amount decimal.Decimal) error {
	rounded := precision.Normalize(amount)
	if !rounded.IsPositive() {
		return reject(types.Deposit, tx, ErrInvalidAmount)
	}

	s.Available = s.Available.Add(rounded)
	s.Ledger[tx] = &TransactionMeta{Amount: rounded}

	return nil
}

// Withdraw debits amount from the available funds and records it in the ledger.
//
// The funds check compares the amount as given, before normalization, while
// the debit itself uses the normalized amount.
func (s *State) Withdraw(tx types.TxID, amount decimal.Decimal) error {
	rounded := precision.Normalize(amount)
	if !rounded.IsPositive() {
		return reject(types.Withdraw, tx, ErrInvalidAmount)
	}

	if amount.GreaterThan(s.Available) {
		return reject(types.Withdraw, tx, ErrInsufficientFunds)
	}

	s.Available = s.Available.Sub(rounded)
	s.Ledger[tx] = &TransactionMeta{Amount: rounded}

	return nil
}

// Dispute holds the amount of a prior transaction. Disputing an entry that is
// already under dispute shifts the amount again.
func (s *State) Dispute(tx types.TxID) error {
	meta, ok := s.Ledger[tx]
	if !ok {
		return reject(types.Dispute, tx, ErrTransactionNotFound)
	}

	meta.UnderDispute = true
	s.Available = s.Available.Sub(meta.Amount)
	s.Held = s.Held.Add(meta.Amount)

	return nil
}

// Resolve releases a disputed amount back to the available funds.
// The entry keeps its UnderDispute flag.
func (s *State) Resolve(tx types.TxID) error {
	meta, ok := s.Ledger[tx]
	if !ok {
		return reject(types.Resolve, tx, ErrTransactionNotFound)
	}

	if !meta.UnderDispute {
		return reject(types.Resolve, tx, ErrNotDisputed)
	}

	s.Held = s.Held.Sub(meta.Amount)
	s.Available = s.Available.Add(meta.Amount)

	return nil
}

// Chargeback drops a disputed amount from the held funds and locks the
// account. Available funds are left untouched, so the total decreases.
func (s *State) Chargeback(tx types.TxID) error {
	meta, ok := s.Ledger[tx]
	if !ok {
		return reject(types.Chargeback, tx, ErrTransactionNotFound)
	}

	if !meta.UnderDispute {
		return reject(types.Chargeback, tx, ErrNotDisputed)
	}

	meta.UnderDispute = false
	s.Held = s.Held.Sub(meta.Amount)
	s.Locked = true

	return nil
}
