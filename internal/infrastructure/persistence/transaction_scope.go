package persistence

import (
	"context"
	"time"

	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultTxMaxRetries is used when the scope is built with a non-positive retry count
const DefaultTxMaxRetries = 3

const retryBackoff = 20 * time.Millisecond

// GormTransactionScope implements ledgerapp.TransactionScope using GORM
// transactions. A transaction that fails with CONCURRENT_MODIFICATION, a
// serialization failure or a deadlock is run again from scratch.
type GormTransactionScope struct {
	db         *gorm.DB
	maxRetries int
	logger     *zap.Logger
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, maxRetries int) *GormTransactionScope {
	if maxRetries <= 0 {
		maxRetries = DefaultTxMaxRetries
	}
	return &GormTransactionScope{db: db, maxRetries: maxRetries, logger: zap.NewNop()}
}

// WithLogger sets the logger used to report retries
func (s *GormTransactionScope) WithLogger(logger *zap.Logger) *GormTransactionScope {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Execute runs fn within a database transaction, committing when it
// returns nil and retrying conflicts up to maxRetries times.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledgerapp.TransactionalRepositories) error) error {
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormTransactionalRepositories{tx: tx})
		})
		if err == nil || !isRetryable(err) || attempt == s.maxRetries {
			return err
		}
		s.logger.Warn("Retrying transaction after conflict",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
	return err
}

// gormTransactionalRepositories provides every ledger repository bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Payments() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Houses() housing.HouseRepository {
	return NewGormHouseRepository(r.tx)
}

func (r *gormTransactionalRepositories) Clients() client.ClientRepository {
	return NewGormClientRepository(r.tx)
}

func (r *gormTransactionalRepositories) Renunciations() client.RenunciationRepository {
	return NewGormRenunciationRepository(r.tx)
}

func (r *gormTransactionalRepositories) Sequences() ledger.SequenceGenerator {
	return NewGormSequenceGenerator(r.tx)
}

var _ ledgerapp.TransactionScope = (*GormTransactionScope)(nil)
var _ ledgerapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
