package ledgerxgo

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	_ Service = (*Ledger)(nil)
)

// Ledger owns the full set of accounts, keyed by id. A single lock
// serializes mutations so a transfer commits as one unit and a snapshot
// always observes one consistent point-in-time view.
type Ledger struct {
	mu    sync.RWMutex
	accts map[string]*Account
	log   *zerolog.Logger
}

// NewLedger returns an empty ledger. A nil logger disables logging.
func NewLedger(log *zerolog.Logger) *Ledger {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Ledger{
		accts: make(map[string]*Account),
		log:   log,
	}
}

// toFixed converts an input amount to the ledger's 2-digit fixed-point
// representation. Every Service operation converts exactly once, on
// entry, before any validation or arithmetic.
func toFixed(amt decimal.Decimal) decimal.Decimal {
	return amt.Round(2)
}

// CreateAccount registers a new account under a fresh UUIDv4 id and
// returns a copy of it. The opening balance must not be negative.
func (l *Ledger) CreateAccount(req CreateAccountReq) (*Account, error) {
	opening := toFixed(req.OpeningBalance)
	if opening.Sign() < 0 {
		return nil, ErrInvalidAmount{Amount: opening}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	acct := &Account{
		AcctID:  uuid.NewString(),
		Name:    req.Name,
		Balance: opening,
	}
	l.accts[acct.AcctID] = acct
	l.log.Info().
		Str("acct_id", acct.AcctID).
		Str("name", acct.Name).
		Str("opening_balance", opening.StringFixed(2)).
		Msg("account created")

	cp := *acct
	return &cp, nil
}

// Deposit credits the amount to the account and returns the new balance.
func (l *Ledger) Deposit(req ChargeReq) (*decimal.Decimal, error) {
	amt := toFixed(req.Amount)

	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accts[req.AcctID]
	if !ok {
		return nil, ErrNotFound{AcctID: req.AcctID}
	}
	if err := acct.deposit(amt); err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("acct_id", acct.AcctID).
		Str("amount", amt.StringFixed(2)).
		Msg("deposit")

	bal := acct.Balance
	return &bal, nil
}

// Withdraw debits the amount from the account and returns the new balance.
func (l *Ledger) Withdraw(req ChargeReq) (*decimal.Decimal, error) {
	amt := toFixed(req.Amount)

	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accts[req.AcctID]
	if !ok {
		return nil, ErrNotFound{AcctID: req.AcctID}
	}
	if err := acct.withdraw(amt); err != nil {
		return nil, err
	}
	l.log.Debug().
		Str("acct_id", acct.AcctID).
		Str("amount", amt.StringFixed(2)).
		Msg("withdraw")

	bal := acct.Balance
	return &bal, nil
}

// Transfer moves the amount from src to dst as one unit: positivity is
// checked once up front, both ids are resolved before any mutation, and
// both balances change under the same critical section or neither does.
// A self-transfer is allowed; it nets to zero but still requires the
// pre-transfer balance to cover the amount.
func (l *Ledger) Transfer(req TransferReq) error {
	amt := toFixed(req.Amount)
	if amt.Sign() <= 0 {
		return ErrInvalidAmount{Amount: amt}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	src, ok := l.accts[req.SrcID]
	if !ok {
		return ErrNotFound{AcctID: req.SrcID}
	}
	dst, ok := l.accts[req.DstID]
	if !ok {
		return ErrNotFound{AcctID: req.DstID}
	}
	if err := src.withdraw(amt); err != nil {
		return err
	}
	if err := dst.deposit(amt); err != nil {
		// unreachable with amt validated above; put the funds back so a
		// failed second leg can never strand money in flight
		src.Balance = src.Balance.Add(amt)
		return err
	}
	l.log.Debug().
		Str("src_id", src.AcctID).
		Str("dst_id", dst.AcctID).
		Str("amount", amt.StringFixed(2)).
		Msg("transfer")

	return nil
}

// Balance returns the exact current balance of the account.
func (l *Ledger) Balance(req BalanceReq) (*decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	acct, ok := l.accts[req.AcctID]
	if !ok {
		return nil, ErrNotFound{AcctID: req.AcctID}
	}

	bal := acct.Balance
	return &bal, nil
}

// Accounts returns a copy of every account, sorted by id. All copies
// are taken under one lock so the listing is a consistent view.
func (l *Ledger) Accounts() []Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Account, 0, len(l.accts))
	for _, acct := range l.accts {
		out = append(out, *acct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AcctID < out[j].AcctID })
	return out
}
