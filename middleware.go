package ledgerxgo

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
)

type Middleware func(Service) Service

var (
	_ Service = (*validationMiddleware)(nil)
)

// validationMiddleware rejects requests whose shape is broken before
// they reach the ledger: missing account ids and the like. Domain rules
// (positivity, sufficient funds) stay with the ledger so its error
// kinds surface unchanged.
type validationMiddleware struct {
	next Service
}

func NewValidationMiddleware() Middleware {
	return func(next Service) Service {
		return &validationMiddleware{next: next}
	}
}

func (v *validationMiddleware) CreateAccount(req CreateAccountReq) (*Account, error) {
	return v.next.CreateAccount(req)
}

func (v *validationMiddleware) Deposit(req ChargeReq) (*decimal.Decimal, error) {
	if req.AcctID == "" {
		return nil, ErrBadRequest{Fields: map[string]string{"acct_id": "missing"}}
	}
	return v.next.Deposit(req)
}

func (v *validationMiddleware) Withdraw(req ChargeReq) (*decimal.Decimal, error) {
	if req.AcctID == "" {
		return nil, ErrBadRequest{Fields: map[string]string{"acct_id": "missing"}}
	}
	return v.next.Withdraw(req)
}

func (v *validationMiddleware) Transfer(req TransferReq) error {
	fields := map[string]string{}
	if req.SrcID == "" {
		fields["src_id"] = "missing"
	}
	if req.DstID == "" {
		fields["dst_id"] = "missing"
	}
	if len(fields) > 0 {
		return ErrBadRequest{Fields: fields}
	}
	return v.next.Transfer(req)
}

func (v *validationMiddleware) Balance(req BalanceReq) (*decimal.Decimal, error) {
	if req.AcctID == "" {
		return nil, ErrBadRequest{Fields: map[string]string{"acct_id": "missing"}}
	}
	return v.next.Balance(req)
}

func (v *validationMiddleware) Accounts() []Account {
	return v.next.Accounts()
}

func (v *validationMiddleware) Snapshot(w io.Writer) error {
	return v.next.Snapshot(w)
}

func (v *validationMiddleware) Report(w io.Writer) error {
	return v.next.Report(w)
}

//
// Rate limiting middlewares
//

// limitMiddleware bounds the number of in-flight requests per operation
// with weighted semaphores, shedding load with ErrOverCapacity when a
// slot cannot be acquired within the configured timeout.
type limitMiddleware struct {
	next    Service
	limits  *ServiceLimits
	timeout time.Duration
}

var (
	_ Service = (*limitMiddleware)(nil)
)

type ServiceLimits struct {
	CreateAccount *semaphore.Weighted
	Deposit       *semaphore.Weighted
	Withdraw      *semaphore.Weighted
	Transfer      *semaphore.Weighted
	Balance       *semaphore.Weighted
	Snapshot      *semaphore.Weighted
	Report        *semaphore.Weighted
}

// NewServiceLimits allows n in-flight requests per operation.
func NewServiceLimits(n int64) *ServiceLimits {
	return &ServiceLimits{
		CreateAccount: semaphore.NewWeighted(n),
		Deposit:       semaphore.NewWeighted(n),
		Withdraw:      semaphore.NewWeighted(n),
		Transfer:      semaphore.NewWeighted(n),
		Balance:       semaphore.NewWeighted(n),
		Snapshot:      semaphore.NewWeighted(n),
		Report:        semaphore.NewWeighted(n),
	}
}

func NewLimitMiddleware(limits *ServiceLimits, timeout time.Duration) Middleware {
	return func(next Service) Service {
		return &limitMiddleware{
			next:    next,
			limits:  limits,
			timeout: timeout,
		}
	}
}

func (l *limitMiddleware) acquire(sem *semaphore.Weighted) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	if err := sem.Acquire(ctx, 1); err != nil {
		return ErrOverCapacity
	}
	return nil
}

func (l *limitMiddleware) CreateAccount(req CreateAccountReq) (*Account, error) {
	if err := l.acquire(l.limits.CreateAccount); err != nil {
		return nil, err
	}
	defer l.limits.CreateAccount.Release(1)
	return l.next.CreateAccount(req)
}

func (l *limitMiddleware) Deposit(req ChargeReq) (*decimal.Decimal, error) {
	if err := l.acquire(l.limits.Deposit); err != nil {
		return nil, err
	}
	defer l.limits.Deposit.Release(1)
	return l.next.Deposit(req)
}

func (l *limitMiddleware) Withdraw(req ChargeReq) (*decimal.Decimal, error) {
	if err := l.acquire(l.limits.Withdraw); err != nil {
		return nil, err
	}
	defer l.limits.Withdraw.Release(1)
	return l.next.Withdraw(req)
}

func (l *limitMiddleware) Transfer(req TransferReq) error {
	if err := l.acquire(l.limits.Transfer); err != nil {
		return err
	}
	defer l.limits.Transfer.Release(1)
	return l.next.Transfer(req)
}

func (l *limitMiddleware) Balance(req BalanceReq) (*decimal.Decimal, error) {
	if err := l.acquire(l.limits.Balance); err != nil {
		return nil, err
	}
	defer l.limits.Balance.Release(1)
	return l.next.Balance(req)
}

func (l *limitMiddleware) Accounts() []Account {
	return l.next.Accounts()
}

func (l *limitMiddleware) Snapshot(w io.Writer) error {
	if err := l.acquire(l.limits.Snapshot); err != nil {
		return err
	}
	defer l.limits.Snapshot.Release(1)
	return l.next.Snapshot(w)
}

func (l *limitMiddleware) Report(w io.Writer) error {
	if err := l.acquire(l.limits.Report); err != nil {
		return err
	}
	defer l.limits.Report.Release(1)
	return l.next.Report(w)
}

type ServiceBreaker struct {
	Snapshot *gobreaker.CircuitBreaker[any]
	Report   *gobreaker.CircuitBreaker[any]
}

// NewServiceBreaker covers the io-bound operations. Pure in-memory
// operations are not guarded: their failures are caller errors, not
// load signals, and their error kinds must reach the caller unchanged.
func NewServiceBreaker() *ServiceBreaker {
	return &ServiceBreaker{
		Snapshot: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{Name: "snapshot"}),
		Report:   gobreaker.NewCircuitBreaker[any](gobreaker.Settings{Name: "report"}),
	}
}

// circuitBreakMiddleware trips the io-bound operations open after
// repeated failures instead of letting every request grind on a broken
// writer.
type circuitBreakMiddleware struct {
	next  Service
	brkrs *ServiceBreaker
}

var (
	_ Service = (*circuitBreakMiddleware)(nil)
)

func NewCircuitBreakMiddleware(brkrs *ServiceBreaker) Middleware {
	return func(next Service) Service {
		return &circuitBreakMiddleware{
			next:  next,
			brkrs: brkrs,
		}
	}
}

func (c *circuitBreakMiddleware) CreateAccount(req CreateAccountReq) (*Account, error) {
	return c.next.CreateAccount(req)
}

func (c *circuitBreakMiddleware) Deposit(req ChargeReq) (*decimal.Decimal, error) {
	return c.next.Deposit(req)
}

func (c *circuitBreakMiddleware) Withdraw(req ChargeReq) (*decimal.Decimal, error) {
	return c.next.Withdraw(req)
}

func (c *circuitBreakMiddleware) Transfer(req TransferReq) error {
	return c.next.Transfer(req)
}

func (c *circuitBreakMiddleware) Balance(req BalanceReq) (*decimal.Decimal, error) {
	return c.next.Balance(req)
}

func (c *circuitBreakMiddleware) Accounts() []Account {
	return c.next.Accounts()
}

func (c *circuitBreakMiddleware) Snapshot(w io.Writer) error {
	_, err := c.brkrs.Snapshot.Execute(func() (any, error) {
		return nil, c.next.Snapshot(w)
	})
	return err
}

func (c *circuitBreakMiddleware) Report(w io.Writer) error {
	_, err := c.brkrs.Report.Execute(func() (any, error) {
		return nil, c.next.Report(w)
	})
	return err
}
