package persistence

import (
	"context"
	"fmt"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	found, err := first(r.db.WithContext(ctx).Where("id = ?", id), &model)
	if err != nil || !found {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists payments by client, house and source. Voided payments are
// skipped unless IncludeVoided is set.
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{})
	if filter.ClientID != nil {
		query = query.Where("cliente_id = ?", *filter.ClientID)
	}
	if filter.HouseID != nil {
		query = query.Where("vivienda_id = ?", *filter.HouseID)
	}
	if filter.Source != "" {
		query = query.Where("fuente = ?", filter.Source)
	}
	if !filter.IncludeVoided {
		query = query.Where("estado_proceso = ?", ledger.PaymentActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.PaymentModel
	if err := applyPaging(query, filter.Filter, PaymentSortFields, "consecutivo").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	payments := make([]ledger.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, total, nil
}

func (r *GormPaymentRepository) activeBySource(ctx context.Context, clientID uuid.UUID, source client.FundingSource, excludeID uuid.UUID) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("cliente_id = ? AND fuente = ? AND estado_proceso = ?", clientID, source, ledger.PaymentActive)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	return query
}

// SumActive sums the active payments of one client and source
func (r *GormPaymentRepository) SumActive(ctx context.Context, clientID uuid.UUID, source client.FundingSource, excludeID uuid.UUID) (decimal.Decimal, error) {
	return sumAmount(r.activeBySource(ctx, clientID, source, excludeID))
}

// CountActive counts the active payments of one client and source
func (r *GormPaymentRepository) CountActive(ctx context.Context, clientID uuid.UUID, source client.FundingSource, excludeID uuid.UUID) (int64, error) {
	var count int64
	err := r.activeBySource(ctx, clientID, source, excludeID).Count(&count).Error
	return count, err
}

// SumActiveBySource groups the active payments of a client by source
func (r *GormPaymentRepository) SumActiveBySource(ctx context.Context, clientID uuid.UUID) ([]ledger.SourceTotal, error) {
	var rows []struct {
		Fuente string
		Total  decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Select("fuente, COALESCE(SUM(monto), 0) AS total").
		Where("cliente_id = ? AND estado_proceso = ?", clientID, ledger.PaymentActive).
		Group("fuente").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ledger.SourceTotal, len(rows))
	for i, row := range rows {
		out[i] = ledger.SourceTotal{Source: client.FundingSource(row.Fuente), Total: row.Total}
	}
	return out, nil
}

// SumActiveByHouse sums every active payment booked against a house
func (r *GormPaymentRepository) SumActiveByHouse(ctx context.Context, houseID uuid.UUID) (decimal.Decimal, error) {
	return sumAmount(r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("vivienda_id = ? AND estado_proceso = ?", houseID, ledger.PaymentActive))
}

// CountByHouse counts payments of a house in any state
func (r *GormPaymentRepository) CountByHouse(ctx context.Context, houseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("vivienda_id = ?", houseID).
		Count(&count).Error
	return count, err
}

// FindActiveByClientAndHouse lists active payments in sequence order
func (r *GormPaymentRepository) FindActiveByClientAndHouse(ctx context.Context, clientID, houseID uuid.UUID) ([]ledger.Payment, error) {
	var rows []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("cliente_id = ? AND vivienda_id = ? AND estado_proceso = ?", clientID, houseID, ledger.PaymentActive).
		Order("consecutivo ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]ledger.Payment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// Save inserts a new payment
func (r *GormPaymentRepository) Save(ctx context.Context, p *ledger.Payment) error {
	model := models.PaymentModelFromDomain(p)
	return translateWriteError(r.db.WithContext(ctx).Create(model).Error, fmt.Sprintf("payment #%d", p.Sequence))
}

// SaveWithLock updates a payment with optimistic locking
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *ledger.Payment) error {
	model := models.PaymentModelFromDomain(p)
	model.Version = p.Version + 1
	if err := saveWithLock(r.db.WithContext(ctx), model, p.ID, p.Version); err != nil {
		return err
	}
	p.Version++
	return nil
}

func sumAmount(query *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := query.Select("COALESCE(SUM(monto), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)

// GormSequenceGenerator hands out numbers from the counters table. It must
// run on the transaction that books the number; the UPDATE holds the
// counter row until commit, so concurrent callers queue behind it.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// NextSequence increments the named counter and returns the new value
func (g *GormSequenceGenerator) NextSequence(ctx context.Context, name string) (int64, error) {
	db := g.db.WithContext(ctx)
	result := db.Model(&models.CounterModel{}).
		Where("name = ?", name).
		UpdateColumn("current_number", gorm.Expr("current_number + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, shared.NewDomainError(ledger.CodeCounterNotFound, fmt.Sprintf("counter %q is not initialized", name))
	}
	var counter models.CounterModel
	if err := db.Where("name = ?", name).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.CurrentNumber, nil
}

var _ ledger.SequenceGenerator = (*GormSequenceGenerator)(nil)
