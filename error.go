package ledgerxgo

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInternalServer = errors.New("internal server error")
	// ErrOverCapacity is returned by the limit middleware when an
	// operation cannot acquire a slot within its deadline.
	ErrOverCapacity = errors.New("service over capacity")
)

type ErrBadRequest struct {
	Fields map[string]string
}

func (e ErrBadRequest) Error() string {
	return fmt.Sprintf("missing/invalid params: %v", e.Fields)
}

// ErrNotFound is returned when a referenced account id has no
// corresponding account in the ledger.
type ErrNotFound struct {
	AcctID string `json:"acct_id"`
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("account %q not found", e.AcctID)
}

// ErrInvalidAmount is returned when an amount is not strictly positive
// where positivity is required, or an opening balance is negative.
// Amount carries the offending value after fixed-point conversion.
type ErrInvalidAmount struct {
	Amount decimal.Decimal `json:"amount"`
}

func (e ErrInvalidAmount) Error() string {
	return fmt.Sprintf("invalid amount %s", e.Amount.StringFixed(2))
}

// ErrInsufficientFunds is returned when a withdrawal, directly or via
// transfer, exceeds the account's current balance.
type ErrInsufficientFunds struct {
	AcctID  string          `json:"acct_id"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

func (e ErrInsufficientFunds) Error() string {
	return fmt.Sprintf("account %q balance %s is short of %s",
		e.AcctID, e.Balance.StringFixed(2), e.Amount.StringFixed(2))
}

// ErrCorruptSnapshot is returned when a snapshot source exists but one
// of its records does not parse into a valid account. Record is the
// 1-based index of the offending record, counting the header.
type ErrCorruptSnapshot struct {
	Record int    `json:"record"`
	Reason string `json:"reason"`
}

func (e ErrCorruptSnapshot) Error() string {
	return fmt.Sprintf("corrupt snapshot: record %d: %s", e.Record, e.Reason)
}
