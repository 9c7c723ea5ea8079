package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func manualMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ExportInterval: time.Minute}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestCounterAndHistogram(t *testing.T) {
	reader, mp := manualMeter(t)
	meter := mp.Meter("test")
	ctx := context.Background()

	c, err := telemetry.NewCounter(meter, "requests_total", "requests", "{requests}")
	require.NoError(t, err)
	c.Inc(ctx, telemetry.AttrHTTPRoute.String("/api/v1/abonos"))
	c.Add(ctx, 2, telemetry.AttrHTTPRoute.String("/api/v1/abonos"))

	h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name: "tx_seconds", Unit: "s", Boundaries: telemetry.LedgerTxBuckets,
	})
	require.NoError(t, err)
	h.RecordDuration(ctx, 30*time.Millisecond)

	data := collect(t, reader)
	sum := data["requests_total"].(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(3), sum.DataPoints[0].Value)

	hist := data["tx_seconds"].(metricdata.Histogram[float64])
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, telemetry.LedgerTxBuckets, hist.DataPoints[0].Bounds)
}

type fakePortfolio struct {
	positions []telemetry.ProjectPosition
	err       error
}

func (f fakePortfolio) ProjectPositions(context.Context) ([]telemetry.ProjectPosition, error) {
	return f.positions, f.err
}

func TestNewLedgerMetrics_RequiresMeter(t *testing.T) {
	_, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{})
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestLedgerMetrics_RecordLedgerOperation(t *testing.T) {
	reader, mp := manualMeter(t)
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{Meter: mp.Meter("ledger")})
	require.NoError(t, err)
	ctx := context.Background()

	lm.RecordLedgerOperation(ctx, "registered", client.SourceDownPayment, decimal.RequireFromString("1500000.75"))
	lm.RecordLedgerOperation(ctx, "registered", client.SourceDownPayment, decimal.NewFromInt(500000))
	lm.RecordLedgerOperation(ctx, "voided", client.SourceCredit, decimal.Zero)

	data := collect(t, reader)
	ops := data["constructora_ledger_operations_total"].(metricdata.Sum[int64])
	assert.Len(t, ops.DataPoints, 2)

	amount := data["constructora_ledger_amount_total"].(metricdata.Sum[int64])
	require.Len(t, amount.DataPoints, 1)
	assert.Equal(t, int64(2000000), amount.DataPoints[0].Value)
	v, ok := amount.DataPoints[0].Attributes.Value(attribute.Key("ledger.fuente"))
	require.True(t, ok)
	assert.Equal(t, "cuotaInicial", v.AsString())
}

func TestLedgerMetrics_CollectPortfolio(t *testing.T) {
	reader, mp := manualMeter(t)
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter: mp.Meter("ledger"),
		Portfolio: fakePortfolio{positions: []telemetry.ProjectPosition{
			{ProjectID: "p1", AssignedHouses: 4, TotalPaid: decimal.NewFromInt(80), TotalBalance: decimal.NewFromInt(320)},
		}},
	})
	require.NoError(t, err)

	lm.CollectPortfolio(context.Background())
	data := collect(t, reader)

	houses := data["constructora_houses_assigned"].(metricdata.Gauge[int64])
	require.Len(t, houses.DataPoints, 1)
	assert.Equal(t, int64(4), houses.DataPoints[0].Value)
	balance := data["constructora_portfolio_balance"].(metricdata.Gauge[float64])
	assert.Equal(t, 320.0, balance.DataPoints[0].Value)
}

func TestLedgerMetrics_CollectPortfolioError(t *testing.T) {
	reader, mp := manualMeter(t)
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{
		Meter:     mp.Meter("ledger"),
		Logger:    zaptest.NewLogger(t),
		Portfolio: fakePortfolio{err: errors.New("db down")},
	})
	require.NoError(t, err)

	lm.CollectPortfolio(context.Background())
	_, ok := collect(t, reader)["constructora_houses_assigned"]
	assert.False(t, ok)
}

func TestLedgerMetrics_PeriodicCollectionStops(t *testing.T) {
	_, mp := manualMeter(t)
	lm, err := telemetry.NewLedgerMetrics(telemetry.LedgerMetricsConfig{Meter: mp.Meter("ledger"), Portfolio: fakePortfolio{}})
	require.NoError(t, err)

	lm.StartPeriodicCollection(context.Background(), 10*time.Millisecond)
	lm.StartPeriodicCollection(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	lm.Stop()
	lm.Stop()
}
