package telemetry_test

import (
	"context"
	"testing"

	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/infrastructure/persistence"
	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormPortfolioProvider_ProjectPositions(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(ctx, db))

	project, err := housing.NewProject("Altos de la Sierra", "Neiva", "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormProjectRepository(db).Save(ctx, project))

	houses := persistence.NewGormHouseRepository(db)
	for _, number := range []string{"1", "2", "3"} {
		h, err := housing.NewHouse(project.ID, "A", number, decimal.NewFromInt(100_000_000), decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, houses.Save(ctx, h))
		if number != "3" {
			require.NoError(t, db.Exec(
				"UPDATE viviendas SET cliente_id = ?, total_abonado = 10000000, saldo_pendiente = 90000000 WHERE id = ?",
				uuid.New().String(), h.ID.String()).Error)
		}
	}

	positions, err := telemetry.NewGormPortfolioProvider(db).ProjectPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, int64(2), positions[0].AssignedHouses)
	assert.True(t, positions[0].TotalPaid.Equal(decimal.NewFromInt(20_000_000)))
	assert.True(t, positions[0].TotalBalance.Equal(decimal.NewFromInt(180_000_000)))
}
