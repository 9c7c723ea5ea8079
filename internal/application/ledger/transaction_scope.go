package ledger

import (
	"context"
	"fmt"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionScope runs a unit of work against the transactional store.
// The function may be invoked more than once when the store reports a
// conflict, so it must not have side effects outside the repositories.
type TransactionScope interface {
	// Execute commits when fn returns nil and rolls back otherwise
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes every repository touched by ledger
// operations. All of them share the same database transaction.
type TransactionalRepositories interface {
	Payments() ledger.PaymentRepository
	Houses() housing.HouseRepository
	Clients() client.ClientRepository
	Renunciations() client.RenunciationRepository
	Sequences() ledger.SequenceGenerator
}

// NoOpTransactionScope runs the function directly against the given
// repositories. Used by unit tests with in-memory fakes.
type NoOpTransactionScope struct {
	payments      ledger.PaymentRepository
	houses        housing.HouseRepository
	clients       client.ClientRepository
	renunciations client.RenunciationRepository
	sequences     ledger.SequenceGenerator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	payments ledger.PaymentRepository,
	houses housing.HouseRepository,
	clients client.ClientRepository,
	renunciations client.RenunciationRepository,
	sequences ledger.SequenceGenerator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		payments:      payments,
		houses:        houses,
		clients:       clients,
		renunciations: renunciations,
		sequences:     sequences,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Payments() ledger.PaymentRepository           { return s.payments }
func (s *NoOpTransactionScope) Houses() housing.HouseRepository              { return s.houses }
func (s *NoOpTransactionScope) Clients() client.ClientRepository             { return s.clients }
func (s *NoOpTransactionScope) Renunciations() client.RenunciationRepository { return s.renunciations }
func (s *NoOpTransactionScope) Sequences() ledger.SequenceGenerator          { return s.sequences }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

// LockClient loads the client with a row lock. Every ledger write starts
// here so that writes for one client are serialized.
func LockClient(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*client.Client, error) {
	c, err := repos.Clients().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}
	if c == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "client not found")
	}
	return c, nil
}

// LockHouse loads the house with a row lock
func LockHouse(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*housing.House, error) {
	h, err := repos.Houses().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load house: %w", err)
	}
	if h == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "house not found")
	}
	return h, nil
}

func loadPayment(ctx context.Context, repos TransactionalRepositories, id uuid.UUID) (*ledger.Payment, error) {
	p, err := repos.Payments().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if p == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "payment not found")
	}
	return p, nil
}
