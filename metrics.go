package ledgerxgo

import (
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// MetricsCollector bundles the ledger's prometheus instruments on a
// private registry.
type MetricsCollector struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	accounts   prometheus.Gauge
}

func NewMetricsCollector() *MetricsCollector {
	registry := prometheus.NewRegistry()
	return &MetricsCollector{
		registry: registry,
		operations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Ledger operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		accounts: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "ledger_accounts",
			Help: "Number of accounts in the ledger.",
		}),
	}
}

// Handler exposes the collector's registry in prometheus text format.
func (mc *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(mc.registry, promhttp.HandlerOpts{})
}

func (mc *MetricsCollector) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	mc.operations.WithLabelValues(op, outcome).Inc()
	mc.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// instrumentMiddleware records counts and latencies for every Service
// operation.
type instrumentMiddleware struct {
	next Service
	mc   *MetricsCollector
}

var (
	_ Service = (*instrumentMiddleware)(nil)
)

func NewInstrumentMiddleware(mc *MetricsCollector) Middleware {
	return func(next Service) Service {
		return &instrumentMiddleware{
			next: next,
			mc:   mc,
		}
	}
}

func (i *instrumentMiddleware) CreateAccount(req CreateAccountReq) (*Account, error) {
	start := time.Now()
	acct, err := i.next.CreateAccount(req)
	i.mc.observe("create_account", start, err)
	if err == nil {
		i.mc.accounts.Inc()
	}
	return acct, err
}

func (i *instrumentMiddleware) Deposit(req ChargeReq) (*decimal.Decimal, error) {
	start := time.Now()
	bal, err := i.next.Deposit(req)
	i.mc.observe("deposit", start, err)
	return bal, err
}

func (i *instrumentMiddleware) Withdraw(req ChargeReq) (*decimal.Decimal, error) {
	start := time.Now()
	bal, err := i.next.Withdraw(req)
	i.mc.observe("withdraw", start, err)
	return bal, err
}

func (i *instrumentMiddleware) Transfer(req TransferReq) error {
	start := time.Now()
	err := i.next.Transfer(req)
	i.mc.observe("transfer", start, err)
	return err
}

func (i *instrumentMiddleware) Balance(req BalanceReq) (*decimal.Decimal, error) {
	start := time.Now()
	bal, err := i.next.Balance(req)
	i.mc.observe("balance", start, err)
	return bal, err
}

func (i *instrumentMiddleware) Accounts() []Account {
	start := time.Now()
	accts := i.next.Accounts()
	i.mc.observe("accounts", start, nil)
	i.mc.accounts.Set(float64(len(accts)))
	return accts
}

func (i *instrumentMiddleware) Snapshot(w io.Writer) error {
	start := time.Now()
	err := i.next.Snapshot(w)
	i.mc.observe("snapshot", start, err)
	return err
}

func (i *instrumentMiddleware) Report(w io.Writer) error {
	start := time.Now()
	err := i.next.Report(w)
	i.mc.observe("report", start, err)
	return err
}
