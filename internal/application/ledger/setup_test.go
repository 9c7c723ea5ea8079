package ledger_test

import (
	"context"
	"sync"
	"testing"

	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) byType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	db        *gorm.DB
	scope     *persistence.GormTransactionScope
	payments  *persistence.GormPaymentRepository
	clients   *persistence.GormClientRepository
	houses    *persistence.GormHouseRepository
	projects  *persistence.GormProjectRepository
	service   *ledgerapp.PaymentService
	publisher *recordingPublisher

	project *housing.Project
	house   *housing.House
	client  *client.Client
}

func millions(n int64) decimal.Decimal {
	return decimal.NewFromInt(n * 1_000_000)
}

// newTestEnv wires the payment service on SQLite with a 100M house
// assigned to a client who agreed 10M down payment and 50M credit.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, persistence.AutoMigrate(ctx, db))

	env := &testEnv{
		db:        db,
		scope:     persistence.NewGormTransactionScope(db, 3),
		payments:  persistence.NewGormPaymentRepository(db),
		clients:   persistence.NewGormClientRepository(db),
		houses:    persistence.NewGormHouseRepository(db),
		projects:  persistence.NewGormProjectRepository(db),
		publisher: &recordingPublisher{},
	}
	env.service = ledgerapp.NewPaymentService(env.scope, env.payments, env.clients, env.projects)
	env.service.SetEventPublisher(env.publisher)

	env.project, err = housing.NewProject("Villa Verde", "Neiva", "")
	require.NoError(t, err)
	require.NoError(t, env.projects.Save(ctx, env.project))

	env.house, env.client = env.addClient(t, "A", "1", client.Financing{
		DownPayment: client.SourceTerms{Applies: true, Amount: millions(10)},
		Credit:      client.SourceTerms{Applies: true, Amount: millions(50), Entity: "Banco Agrario"},
	})
	return env
}

func (e *testEnv) addClient(t *testing.T, block, number string, f client.Financing) (*housing.House, *client.Client) {
	t.Helper()
	ctx := context.Background()
	h, err := housing.NewHouse(e.project.ID, block, number, millions(100), decimal.Zero)
	require.NoError(t, err)
	c, err := client.NewClient(client.PersonalData{
		FirstName:      "Ana",
		LastName:       "Rojas " + block + number,
		DocumentNumber: uuid.NewString()[:12],
	}, e.project.ID, h.ID, f)
	require.NoError(t, err)
	require.NoError(t, h.AssignClient(c.ID))
	require.NoError(t, e.houses.Save(ctx, h))
	require.NoError(t, e.clients.Save(ctx, c))
	return h, c
}

// completeStep marks a step as done directly in storage
func (e *testEnv) completeStep(t *testing.T, clientID uuid.UUID, key client.StepKey) {
	t.Helper()
	ctx := context.Background()
	c, err := e.clients.FindByID(ctx, clientID)
	require.NoError(t, err)
	step, ok := c.Process.Step(key)
	require.True(t, ok, "step %s is not part of the process", key)
	step.Completed = true
	require.NoError(t, e.clients.SaveWithLock(ctx, c))
}

func (e *testEnv) reloadHouse(t *testing.T, id uuid.UUID) *housing.House {
	t.Helper()
	h, err := e.houses.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, h)
	return h
}

func (e *testEnv) reloadClient(t *testing.T, id uuid.UUID) *client.Client {
	t.Helper()
	c, err := e.clients.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func (e *testEnv) downPayment(amount decimal.Decimal) ledgerapp.RegisterPaymentRequest {
	return ledgerapp.RegisterPaymentRequest{
		ClientID: e.client.ID,
		HouseID:  e.house.ID,
		Source:   client.SourceDownPayment,
		Amount:   amount,
		PaidOn:   "2026-05-10",
		Method:   "Transferencia",
		Actor:    "admin",
	}
}
