package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type proyectoRow struct {
	ID     uint `gorm:"primaryKey"`
	Nombre string
}

func (proyectoRow) TableName() string { return "proyectos" }

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&proyectoRow{}))
	return db
}

func sumByAttr(data metricdata.Aggregation, key, value string) int64 {
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		return 0
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestDBMetricsPlugin_RecordsStatements(t *testing.T) {
	reader, mp := manualMeter(t)
	db := openSQLite(t)

	m, err := telemetry.NewDBMetrics(mp.Meter("db.client"), telemetry.DBMetricsConfig{
		SlowQueryThreshold: time.Nanosecond,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, db.Use(telemetry.NewDBMetricsPlugin(m)))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&proyectoRow{Nombre: "Villa Sol"}).Error)
	var rows []proyectoRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.NoError(t, db.WithContext(ctx).Exec("UPDATE proyectos SET nombre = ?", "Villa Luna").Error)

	data := collect(t, reader)
	queries := data["db_query_total"]
	assert.Equal(t, int64(1), sumByAttr(queries, "db.operation", "INSERT"))
	assert.Equal(t, int64(1), sumByAttr(queries, "db.operation", "SELECT"))
	assert.Equal(t, int64(1), sumByAttr(queries, "db.operation", "UPDATE"))
	assert.Contains(t, data, "db_query_duration_seconds")
	assert.GreaterOrEqual(t, sumByAttr(data["db_slow_query_total"], "db.table", "proyectos"), int64(2))
}

func TestDBMetrics_PoolStats(t *testing.T) {
	reader, mp := manualMeter(t)
	db := openSQLite(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m, err := telemetry.NewDBMetrics(mp.Meter("db.client"), telemetry.DBMetricsConfig{
		PoolStatsInterval: 10 * time.Millisecond,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	m.SetSQLDB(sqlDB)
	m.StartPoolStatsCollection(context.Background())

	assert.Eventually(t, func() bool {
		_, ok := collect(t, reader)["db_pool_connections_max"]
		return ok
	}, time.Second, 10*time.Millisecond)

	m.Stop()
	m.Stop()
}

func TestRegisterDBMetrics_Disabled(t *testing.T) {
	db := openSQLite(t)
	log := zaptest.NewLogger(t)

	m, err := telemetry.RegisterDBMetrics(db, nil, telemetry.DefaultDBMetricsConfig(), log)
	require.NoError(t, err)
	assert.Nil(t, m)

	cfg := telemetry.DefaultDBMetricsConfig()
	cfg.Enabled = false
	m, err = telemetry.RegisterDBMetrics(db, nil, cfg, log)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestNewDBMetrics_RequiresMeter(t *testing.T) {
	_, err := telemetry.NewDBMetrics(nil, telemetry.DefaultDBMetricsConfig(), nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}
