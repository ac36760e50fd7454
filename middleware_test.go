package ledgerxgo_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/arhyth/ledgerxgo"
	"github.com/arhyth/ledgerxgo/mocks"
)

func TestValidationMW(t *testing.T) {
	t.Run("rejects a charge without an account id before the ledger sees it", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		v := ledgerxgo.NewValidationMiddleware()(svc)

		bal, err := v.Deposit(ledgerxgo.ChargeReq{Amount: decimal.NewFromInt(10)})
		as.ErrorAs(err, &ledgerxgo.ErrBadRequest{})
		as.Nil(bal)

		bal, err = v.Withdraw(ledgerxgo.ChargeReq{Amount: decimal.NewFromInt(10)})
		as.ErrorAs(err, &ledgerxgo.ErrBadRequest{})
		as.Nil(bal)

		bal, err = v.Balance(ledgerxgo.BalanceReq{})
		as.ErrorAs(err, &ledgerxgo.ErrBadRequest{})
		as.Nil(bal)
	})

	t.Run("names every missing transfer id", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		v := ledgerxgo.NewValidationMiddleware()(svc)

		err := v.Transfer(ledgerxgo.TransferReq{Amount: decimal.NewFromInt(10)})
		errbr := &ledgerxgo.ErrBadRequest{}
		reqrd.ErrorAs(err, errbr)
		as.Contains(errbr.Fields, "src_id")
		as.Contains(errbr.Fields, "dst_id")
	})

	t.Run("passes well-formed requests through untouched", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		v := ledgerxgo.NewValidationMiddleware()(svc)

		req := ledgerxgo.ChargeReq{Amount: decimal.NewFromInt(10), AcctID: "abc"}
		bal := decimal.NewFromInt(20)
		svc.EXPECT().
			Deposit(req).
			Return(&bal, nil).
			Times(1)
		got, err := v.Deposit(req)
		reqrd.Nil(err)
		as.Equal("20.00", got.StringFixed(2))
	})
}

func TestLimitMW(t *testing.T) {
	t.Run("sheds load once the per-op slots are exhausted", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		limits := ledgerxgo.NewServiceLimits(1)
		lm := ledgerxgo.NewLimitMiddleware(limits, 5*time.Millisecond)(svc)

		reqrd.Nil(limits.Deposit.Acquire(context.Background(), 1))
		defer limits.Deposit.Release(1)

		bal, err := lm.Deposit(ledgerxgo.ChargeReq{Amount: decimal.NewFromInt(1), AcctID: "abc"})
		as.ErrorIs(err, ledgerxgo.ErrOverCapacity)
		as.Nil(bal)
	})

	t.Run("releases the slot after the call", func(tt *testing.T) {
		reqrd := require.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		lm := ledgerxgo.NewLimitMiddleware(ledgerxgo.NewServiceLimits(1), 5*time.Millisecond)(svc)

		req := ledgerxgo.TransferReq{SrcID: "a", DstID: "b", Amount: decimal.NewFromInt(1)}
		svc.EXPECT().
			Transfer(req).
			Return(nil).
			Times(2)
		reqrd.Nil(lm.Transfer(req))
		reqrd.Nil(lm.Transfer(req))
	})
}

func TestCircuitBreakMW(t *testing.T) {
	t.Run("passes in-memory error kinds through unchanged", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		cb := ledgerxgo.NewCircuitBreakMiddleware(ledgerxgo.NewServiceBreaker())(svc)

		req := ledgerxgo.ChargeReq{Amount: decimal.NewFromInt(1), AcctID: "nope"}
		svc.EXPECT().
			Withdraw(req).
			Return(nil, ledgerxgo.ErrNotFound{AcctID: "nope"}).
			Times(1)
		bal, err := cb.Withdraw(req)
		as.ErrorAs(err, &ledgerxgo.ErrNotFound{})
		as.Nil(bal)
	})

	t.Run("surfaces the snapshot error on the first failure", func(tt *testing.T) {
		as := assert.New(tt)
		ctrl := gomock.NewController(tt)
		svc := mocks.NewMockService(ctrl)
		cb := ledgerxgo.NewCircuitBreakMiddleware(ledgerxgo.NewServiceBreaker())(svc)

		svc.EXPECT().
			Snapshot(gomock.Any()).
			Return(ledgerxgo.ErrInternalServer).
			Times(1)
		var buf bytes.Buffer
		as.ErrorIs(cb.Snapshot(&buf), ledgerxgo.ErrInternalServer)
	})
}
