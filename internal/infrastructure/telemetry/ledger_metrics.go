package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// LedgerMetrics counts ledger writes and samples the portfolio position
type LedgerMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	operationsTotal *Counter
	amountTotal     *Counter

	assignedHouses *Gauge
	paidTotal      *FloatGauge
	balanceTotal   *FloatGauge

	portfolio   PortfolioProvider
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// ProjectPosition is the paid and outstanding money of one project
type ProjectPosition struct {
	ProjectID      string
	AssignedHouses int64
	TotalPaid      decimal.Decimal
	TotalBalance   decimal.Decimal
}

// PortfolioProvider reads the per-project position for gauge collection
type PortfolioProvider interface {
	ProjectPositions(ctx context.Context) ([]ProjectPosition, error)
}

// LedgerMetricsConfig configures LedgerMetrics
type LedgerMetricsConfig struct {
	Meter     metric.Meter
	Logger    *zap.Logger
	Portfolio PortfolioProvider
}

// ErrMeterNil is returned when no meter is given
var ErrMeterNil = &MetricsError{Op: "NewLedgerMetrics", Err: "meter cannot be nil"}

// MetricsError is a metrics setup error
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// NewLedgerMetrics registers the ledger instruments on cfg.Meter
func NewLedgerMetrics(cfg LedgerMetricsConfig) (*LedgerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	lm := &LedgerMetrics{
		meter:     cfg.Meter,
		logger:    logger,
		portfolio: cfg.Portfolio,
		stopChan:  make(chan struct{}),
	}

	var err error
	if lm.operationsTotal, err = NewCounter(cfg.Meter,
		"constructora_ledger_operations_total", "Committed ledger operations", "{operations}"); err != nil {
		return nil, err
	}
	if lm.amountTotal, err = NewCounter(cfg.Meter,
		"constructora_ledger_amount_total", "Pesos moved by committed ledger operations", "{COP}"); err != nil {
		return nil, err
	}
	if lm.assignedHouses, err = NewGauge(cfg.Meter,
		"constructora_houses_assigned", "Houses assigned to a client", "{houses}"); err != nil {
		return nil, err
	}
	if lm.paidTotal, err = NewFloatGauge(cfg.Meter,
		"constructora_portfolio_paid", "Sum of paid totals of assigned houses", "{COP}"); err != nil {
		return nil, err
	}
	if lm.balanceTotal, err = NewFloatGauge(cfg.Meter,
		"constructora_portfolio_balance", "Sum of pending balances of assigned houses", "{COP}"); err != nil {
		return nil, err
	}
	return lm, nil
}

// RecordLedgerOperation counts one committed operation and its amount.
// Fractions of a peso are dropped from the amount counter.
func (lm *LedgerMetrics) RecordLedgerOperation(ctx context.Context, operation string, source client.FundingSource, amount decimal.Decimal) {
	lm.operationsTotal.Inc(ctx,
		AttrLedgerOperation.String(operation),
		AttrFundingSource.String(string(source)),
	)
	if amount.IsPositive() {
		lm.amountTotal.Add(ctx, amount.IntPart(),
			AttrLedgerOperation.String(operation),
			AttrFundingSource.String(string(source)),
		)
	}
}

// StartPeriodicCollection samples the portfolio gauges every interval
// (five minutes by default) until Stop or ctx ends. Non-blocking.
func (lm *LedgerMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	lm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go lm.run(ctx, interval)
	})
}

func (lm *LedgerMetrics) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lm.CollectPortfolio(ctx)
	for {
		select {
		case <-lm.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			lm.CollectPortfolio(ctx)
		}
	}
}

// CollectPortfolio records the gauges once
func (lm *LedgerMetrics) CollectPortfolio(ctx context.Context) {
	if lm.portfolio == nil {
		return
	}
	positions, err := lm.portfolio.ProjectPositions(ctx)
	if err != nil {
		lm.logger.Warn("Failed to read portfolio position", zap.Error(err))
		return
	}
	for _, p := range positions {
		project := AttrProjectID.String(p.ProjectID)
		lm.assignedHouses.Record(ctx, p.AssignedHouses, project)
		lm.paidTotal.Record(ctx, p.TotalPaid.InexactFloat64(), project)
		lm.balanceTotal.Record(ctx, p.TotalBalance.InexactFloat64(), project)
	}
}

// Stop ends periodic collection
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() {
		close(lm.stopChan)
	})
}
