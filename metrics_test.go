package ledgerxgo

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentMW(t *testing.T) {
	t.Run("counts operations by outcome and tracks the account gauge", func(tt *testing.T) {
		as := assert.New(tt)
		reqrd := require.New(tt)
		mc := NewMetricsCollector()
		svc := NewInstrumentMiddleware(mc)(NewLedger(nil))

		acct, err := svc.CreateAccount(CreateAccountReq{
			Name:           "Alice",
			OpeningBalance: decimal.NewFromInt(100),
		})
		reqrd.Nil(err)
		_, err = svc.CreateAccount(CreateAccountReq{
			Name:           "Broke",
			OpeningBalance: decimal.NewFromInt(-1),
		})
		reqrd.NotNil(err)
		_, err = svc.Withdraw(ChargeReq{Amount: decimal.NewFromInt(500), AcctID: acct.AcctID})
		reqrd.NotNil(err)

		as.Equal(1.0, testutil.ToFloat64(mc.operations.WithLabelValues("create_account", "ok")))
		as.Equal(1.0, testutil.ToFloat64(mc.operations.WithLabelValues("create_account", "error")))
		as.Equal(1.0, testutil.ToFloat64(mc.operations.WithLabelValues("withdraw", "error")))
		as.Equal(1.0, testutil.ToFloat64(mc.accounts))
	})
}
