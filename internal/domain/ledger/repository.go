package ledger

import (
	"context"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	ClientID      *uuid.UUID
	HouseID       *uuid.UUID
	Source        client.FundingSource
	IncludeVoided bool
}

// SourceTotal is the active sum of one funding source
type SourceTotal struct {
	Source client.FundingSource
	Total  decimal.Decimal
}

// PaymentRepository persists payments
type PaymentRepository interface {
	// FindByID returns nil when the payment does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindAll(ctx context.Context, filter PaymentFilter) ([]Payment, int64, error)
	// SumActive sums active payments of (clientID, source), skipping excludeID
	SumActive(ctx context.Context, clientID uuid.UUID, source client.FundingSource, excludeID uuid.UUID) (decimal.Decimal, error)
	// CountActive counts active payments of (clientID, source), skipping excludeID
	CountActive(ctx context.Context, clientID uuid.UUID, source client.FundingSource, excludeID uuid.UUID) (int64, error)
	// SumActiveBySource groups a client's active payments by source
	SumActiveBySource(ctx context.Context, clientID uuid.UUID) ([]SourceTotal, error)
	SumActiveByHouse(ctx context.Context, houseID uuid.UUID) (decimal.Decimal, error)
	CountByHouse(ctx context.Context, houseID uuid.UUID) (int64, error)
	// FindActiveByClientAndHouse lists the payments a renunciation must unwind
	FindActiveByClientAndHouse(ctx context.Context, clientID, houseID uuid.UUID) ([]Payment, error)
	// Save inserts a new payment
	Save(ctx context.Context, p *Payment) error
	// SaveWithLock updates a payment, failing with CONCURRENT_MODIFICATION on a stale version
	SaveWithLock(ctx context.Context, p *Payment) error
}

// SequenceGenerator hands out gap-free numbers. It must run inside the
// transaction that uses the number so a rollback also returns it.
type SequenceGenerator interface {
	NextSequence(ctx context.Context, name string) (int64, error)
}
