package ledgerxgo

import "github.com/shopspring/decimal"

// Account is one holder's identity plus its current balance. Accounts
// are owned exclusively by a Ledger; values crossing the API boundary
// are copies and mutating them has no effect on ledger state.
type Account struct {
	AcctID  string          `json:"acct_id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// deposit credits amt to the account. amt must already be in 2-digit
// fixed-point form.
func (a *Account) deposit(amt decimal.Decimal) error {
	if amt.Sign() <= 0 {
		return ErrInvalidAmount{Amount: amt}
	}
	a.Balance = a.Balance.Add(amt)
	return nil
}

// withdraw debits amt from the account, refusing overdrafts so the
// balance never goes negative.
func (a *Account) withdraw(amt decimal.Decimal) error {
	if amt.Sign() <= 0 {
		return ErrInvalidAmount{Amount: amt}
	}
	if amt.Cmp(a.Balance) > 0 {
		return ErrInsufficientFunds{AcctID: a.AcctID, Amount: amt, Balance: a.Balance}
	}
	a.Balance = a.Balance.Sub(amt)
	return nil
}
