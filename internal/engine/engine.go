// =============================================================================
// Payments Engine - Engine
// =============================================================================
//
// The engine is the driver around the account state machine. It owns one
// account per client id, routes every record to the right account in input
// order, and renders the final summaries.
//
// PROCESSING RULES:
//   1. The account for a client is created on its first record, even when
//      that record is later rejected.
//   2. Records addressed to a locked account are skipped entirely.
//   3. Business rejections (invalid amount, insufficient funds, unknown or
//      undisputed transaction) are discarded and processing continues.
//   4. Any error from the record source is fatal and stops the run.
//
// =============================================================================

package engine

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ginjaninja78/payments-engine/internal/account"
	"github.com/ginjaninja78/payments-engine/internal/types"
)

var (
	// ErrAccountLocked is returned for records addressed to a locked account.
	ErrAccountLocked = errors.New("account is locked")

	// ErrMissingAmount is returned for a deposit or withdrawal without an amount.
	ErrMissingAmount = errors.New("amount is required")
)

// Source yields transaction records in input order.
type Source interface {
	Next() bool
	Record() types.TransactionRecord
	Err() error
}

// Rejection is a record the engine discarded, with the reason.
type Rejection struct {
	Record types.TransactionRecord
	Err    error
}

// Stats counts what happened during a run.
type Stats struct {
	// Records is the number of records read from the source.
	Records int

	// Applied is the number of records that mutated an account.
	Applied int

	// Rejected is the number of records refused by the state machine.
	Rejected int

	// Skipped is the number of records addressed to a locked account.
	Skipped int

	// Clients is the number of distinct clients observed.
	Clients int

	// ByReason counts rejections and skips by failure kind.
	ByReason map[string]int
}

// Engine routes transaction records to per-client accounts.
type Engine struct {
	accounts   map[types.ClientID]*account.State
	logger     *zap.Logger
	stats      Stats
	collect    bool
	rejections []Rejection
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for rejections.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRejections keeps every rejected or skipped record for later reporting.
func WithRejections() Option {
	return func(e *Engine) {
		e.collect = true
	}
}

// New creates an engine with no accounts.
func New(opts ...Option) *Engine {
	e := &Engine{
		accounts: make(map[types.ClientID]*account.State),
		logger:   zap.NewNop(),
		stats:    Stats{ByReason: make(map[string]int)},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Apply routes one record to its client's account.
//
// It returns nil when the record was applied, ErrAccountLocked when the
// account is locked, ErrMissingAmount for a deposit or withdrawal without an
// amount, or the state machine's *account.TransactionError. None of these
// are fatal.
func (e *Engine) Apply(rec types.TransactionRecord) error {
	state, ok := e.accounts[rec.Client]
	if !ok {
		state = account.New()
		e.accounts[rec.Client] = state
	}

	if state.Locked {
		return ErrAccountLocked
	}

	if rec.Type.RequiresAmount() && rec.Amount == nil {
		return ErrMissingAmount
	}

	switch rec.Type {
	case types.Deposit:
		return state.Deposit(rec.Tx, *rec.Amount)
	case types.Withdraw:
		return state.Withdraw(rec.Tx, *rec.Amount)
	case types.Dispute:
		return state.Dispute(rec.Tx)
	case types.Resolve:
		return state.Resolve(rec.Tx)
	case types.Chargeback:
		return state.Chargeback(rec.Tx)
	default:
		return fmt.Errorf("%w: %s", types.ErrUnknownTransactionType, rec.Type)
	}
}

// Run drains src, applying every record in order. The returned error is
// non-nil only for fatal source errors.
func (e *Engine) Run(src Source) (Stats, error) {
	for src.Next() {
		e.process(src.Record())
	}

	if err := src.Err(); err != nil {
		return e.Stats(), fmt.Errorf("failed to read transactions: %w", err)
	}

	return e.Stats(), nil
}

func (e *Engine) process(rec types.TransactionRecord) {
	e.stats.Records++

	err := e.Apply(rec)
	if err == nil {
		e.stats.Applied++
		return
	}

	if errors.Is(err, ErrAccountLocked) {
		e.stats.Skipped++
	} else {
		e.stats.Rejected++
	}
	e.stats.ByReason[Reason(err)]++

	if e.collect {
		e.rejections = append(e.rejections, Rejection{Record: rec, Err: err})
	}

	e.logger.Debug("transaction rejected",
		zap.Int("row", rec.Row),
		zap.Stringer("type", rec.Type),
		zap.Uint16("client", rec.Client),
		zap.Uint32("tx", rec.Tx),
		zap.String("reason", Reason(err)),
	)
}

// Reason maps a rejection error to a short, stable label.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrMissingAmount):
		return "missing_amount"
	case errors.Is(err, account.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, account.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, account.ErrTransactionNotFound):
		return "transaction_not_found"
	case errors.Is(err, account.ErrNotDisputed):
		return "not_disputed"
	default:
		return "other"
	}
}

// Account returns the state of a client, if it has been observed.
func (e *Engine) Account(client types.ClientID) (*account.State, bool) {
	state, ok := e.accounts[client]
	return state, ok
}

// Summaries returns one normalized row per observed client, ordered by id.
func (e *Engine) Summaries() []types.AccountSummary {
	ids := make([]types.ClientID, 0, len(e.accounts))
	for id := range e.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	summaries := make([]types.AccountSummary, 0, len(ids))
	for _, id := range ids {
		summaries = append(summaries, e.accounts[id].Summary(id))
	}

	return summaries
}

// Rejections returns the collected rejections. It is empty unless the engine
// was built WithRejections.
func (e *Engine) Rejections() []Rejection {
	return e.rejections
}

// Stats returns a copy of the run counters.
func (e *Engine) Stats() Stats {
	stats := e.stats
	stats.Clients = len(e.accounts)
	stats.ByReason = make(map[string]int, len(e.stats.ByReason))
	for k, v := range e.stats.ByReason {
		stats.ByReason[k] = v
	}
	return stats
}
