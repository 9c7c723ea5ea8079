package ledger

import (
	"context"
	"time"

	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReconciliationService checks stored house totals against the ledger
type ReconciliationService struct {
	houses    housing.HouseRepository
	payments  ledger.PaymentRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewReconciliationService creates a ReconciliationService
func NewReconciliationService(
	houses housing.HouseRepository,
	payments ledger.PaymentRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		houses:    houses,
		payments:  payments,
		publisher: publisher,
		logger:    logger,
	}
}

// BalanceMismatch is a house whose stored totals disagree with its payments
type BalanceMismatch struct {
	HouseID         uuid.UUID       `json:"viviendaId"`
	HouseLabel      string          `json:"viviendaNombre"`
	StoredPaid      decimal.Decimal `json:"totalAbonadoGuardado"`
	LedgerPaid      decimal.Decimal `json:"totalAbonadoLibro"`
	StoredBalance   decimal.Decimal `json:"saldoGuardado"`
	ExpectedBalance decimal.Decimal `json:"saldoEsperado"`
}

// ReconciliationReport summarizes one run
type ReconciliationReport struct {
	Checked    int               `json:"revisadas"`
	Failed     int               `json:"fallidas"`
	Mismatches []BalanceMismatch `json:"diferencias"`
	StartedAt  time.Time         `json:"inicio"`
	FinishedAt time.Time         `json:"fin"`
}

// Run recomputes the paid total of every house. It only reports; stored
// totals are never rewritten here.
func (s *ReconciliationService) Run(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{StartedAt: time.Now(), Mismatches: []BalanceMismatch{}}

	ids, err := s.houses.FindAllIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list houses for reconciliation", zap.Error(err))
		return nil, err
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mismatch, err := s.checkHouse(ctx, id)
		if err != nil {
			report.Failed++
			s.logger.Error("Failed to reconcile house", zap.String("house_id", id.String()), zap.Error(err))
			continue
		}
		report.Checked++
		if mismatch != nil {
			report.Mismatches = append(report.Mismatches, *mismatch)
		}
	}
	report.FinishedAt = time.Now()

	s.logger.Info("Balance reconciliation finished",
		zap.Int("checked", report.Checked),
		zap.Int("failed", report.Failed),
		zap.Int("mismatches", len(report.Mismatches)),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (s *ReconciliationService) checkHouse(ctx context.Context, id uuid.UUID) (*BalanceMismatch, error) {
	h, err := s.houses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		// deleted since listing
		return nil, nil
	}
	paid, err := s.payments.SumActiveByHouse(ctx, id)
	if err != nil {
		return nil, err
	}
	expected := h.FinalPrice.Sub(paid)
	if paid.Equal(h.TotalPaid) && expected.Equal(h.Balance) {
		return nil, nil
	}

	s.logger.Warn("House totals differ from the ledger",
		zap.String("house_id", id.String()),
		zap.String("house", h.Label()),
		zap.String("stored_paid", h.TotalPaid.String()),
		zap.String("ledger_paid", paid.String()),
		zap.String("stored_balance", h.Balance.String()),
	)
	if s.publisher != nil {
		_ = s.publisher.Publish(ctx, housing.NewBalanceMismatchEvent(h, paid))
	}
	return &BalanceMismatch{
		HouseID:         h.ID,
		HouseLabel:      h.Label(),
		StoredPaid:      h.TotalPaid,
		LedgerPaid:      paid,
		StoredBalance:   h.Balance,
		ExpectedBalance: expected,
	}, nil
}
