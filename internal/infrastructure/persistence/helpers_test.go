package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with every table created.
// A single connection keeps the memory database shared.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(context.Background(), db))
	return db
}

func millions(n int64) decimal.Decimal {
	return decimal.NewFromInt(n * 1_000_000)
}

type fixture struct {
	project *housing.Project
	house   *housing.House
	client  *client.Client
}

// seedFixture stores a project, a 100M house and an assigned client with
// 10M down payment and 50M credit.
func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()

	p, err := housing.NewProject("Villa Verde", "Neiva", "")
	require.NoError(t, err)
	require.NoError(t, NewGormProjectRepository(db).Save(ctx, p))

	h, err := housing.NewHouse(p.ID, "A", "1", millions(100), decimal.Zero)
	require.NoError(t, err)

	c, err := client.NewClient(client.PersonalData{
		FirstName:      "Ana",
		LastName:       "Rojas",
		DocumentNumber: uuid.NewString()[:10],
	}, p.ID, h.ID, client.Financing{
		DownPayment: client.SourceTerms{Applies: true, Amount: millions(10)},
		Credit:      client.SourceTerms{Applies: true, Amount: millions(50), Entity: "Banco"},
	})
	require.NoError(t, err)
	require.NoError(t, h.AssignClient(c.ID))
	require.NoError(t, NewGormHouseRepository(db).Save(ctx, h))
	require.NoError(t, NewGormClientRepository(db).Save(ctx, c))
	return fixture{project: p, house: h, client: c}
}

func newTestPayment(t *testing.T, f fixture, seq int64, source client.FundingSource, amount decimal.Decimal) *ledger.Payment {
	t.Helper()
	p, err := ledger.NewPayment(seq, ledger.PaymentInput{
		ClientID:  f.client.ID,
		HouseID:   f.house.ID,
		ProjectID: f.project.ID,
		Source:    source,
		Amount:    amount,
		PaidOn:    time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		Method:    "Transferencia",
		Actor:     "admin",
	})
	require.NoError(t, err)
	return p
}
