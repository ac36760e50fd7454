package ledgerxgo

import (
	"io"

	"github.com/shopspring/decimal"
)

type CreateAccountReq struct {
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

type ChargeReq struct {
	Amount decimal.Decimal `json:"amount"`
	AcctID string
}

type TransferReq struct {
	SrcID  string          `json:"src_id"`
	DstID  string          `json:"dst_id"`
	Amount decimal.Decimal `json:"amount"`
}

type BalanceReq struct {
	AcctID string
}

// Service is the money-movement surface of the ledger. The Ledger is
// the canonical implementation; middlewares decorate it.
type Service interface {
	CreateAccount(CreateAccountReq) (*Account, error)
	Deposit(ChargeReq) (*decimal.Decimal, error)
	Withdraw(ChargeReq) (*decimal.Decimal, error)
	Transfer(TransferReq) error
	Balance(BalanceReq) (*decimal.Decimal, error)
	Accounts() []Account
	Snapshot(io.Writer) error
	Report(io.Writer) error
}
