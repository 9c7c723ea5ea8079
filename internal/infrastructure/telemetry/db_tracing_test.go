package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func spanRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return rec, tp
}

func statementFor(ctx context.Context, table string, rows int64, err error) *gorm.DB {
	return &gorm.DB{
		Statement: &gorm.Statement{DB: &gorm.DB{RowsAffected: rows}, Context: ctx, Table: table},
		Error:     err,
	}
}

func endedAttrs(t *testing.T, rec *tracetest.SpanRecorder) (sdktrace.ReadOnlySpan, map[attribute.Key]attribute.Value) {
	t.Helper()
	spans := rec.Ended()
	require.Len(t, spans, 1)
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		out[kv.Key] = kv.Value
	}
	return spans[0], out
}

func TestDBTracingPlugin_AnnotatesSpan(t *testing.T) {
	rec, tp := spanRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zaptest.NewLogger(t))

	ctx, span := tp.Tracer("test").Start(context.Background(), "SELECT abonos")
	p.annotate(statementFor(ctx, "abonos", 3, nil), "SELECT")
	span.End()

	s, attrs := endedAttrs(t, rec)
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, "abonos", attrs["db.sql.table"].AsString())
	assert.NotContains(t, attrs, attribute.Key("db.slow_query"))
	assert.Empty(t, s.Events())
}

func TestDBTracingPlugin_MarksSlowQueries(t *testing.T) {
	rec, tp := spanRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zaptest.NewLogger(t))

	ctx, span := tp.Tracer("test").Start(context.Background(), "UPDATE counters")
	ctx = context.WithValue(ctx, dbTracingStartKey, time.Now().Add(-50*time.Millisecond))
	p.annotate(statementFor(ctx, "counters", 1, nil), "UPDATE")
	span.End()

	s, attrs := endedAttrs(t, rec)
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.GreaterOrEqual(t, attrs["db.query_duration_ms"].AsInt64(), int64(50))
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "slow_query_warning", s.Events()[0].Name)
}

func TestDBTracingPlugin_RecordsErrorsButNotMissingRows(t *testing.T) {
	rec, tp := spanRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, nil)
	tracer := tp.Tracer("test")

	ctx, span := tracer.Start(context.Background(), "SELECT clientes")
	p.annotate(statementFor(ctx, "clientes", 0, gorm.ErrRecordNotFound), "SELECT")
	span.End()
	s, _ := endedAttrs(t, rec)
	assert.NotEqual(t, "Error", s.Status().Code.String())

	rec2, tp2 := spanRecorder(t)
	ctx, span = tp2.Tracer("test").Start(context.Background(), "INSERT abonos")
	p.annotate(statementFor(ctx, "abonos", 0, errors.New("duplicate key")), "INSERT")
	span.End()
	s, _ = endedAttrs(t, rec2)
	assert.Equal(t, "Error", s.Status().Code.String())
	assert.Equal(t, "duplicate key", s.Status().Description)
}

func TestDBTracingPlugin_SkipsNonRecordingSpans(t *testing.T) {
	p := NewDBTracingPlugin(DefaultDBTracingConfig(), nil)
	assert.NotPanics(t, func() {
		p.annotate(statementFor(context.Background(), "abonos", 1, nil), "SELECT")
		p.annotate(statementFor(nil, "", 0, nil), "OTHER")
	})
}

func TestDBTracingPlugin_RegisterOtelGorm(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	disabled := NewDBTracingPlugin(DefaultDBTracingConfig(), zaptest.NewLogger(t))
	require.NoError(t, disabled.RegisterOtelGorm(db))
	assert.Nil(t, db.Callback().Query().Get("db_tracing:after_query"))

	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"
	require.NoError(t, NewDBTracingPlugin(cfg, zaptest.NewLogger(t)).RegisterOtelGorm(db))
	assert.NotNil(t, db.Callback().Query().Get("db_tracing:after_query"))

	var n int
	require.NoError(t, db.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}
