package ledger

import (
	"context"
	"fmt"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes raised by ledger rules
const (
	CodeCeilingExceeded       = "CEILING_EXCEEDED"
	CodeAlreadyDisbursed      = "ALREADY_DISBURSED"
	CodeDuplicateDisbursement = "DUPLICATE_DISBURSEMENT"
	CodeCounterNotFound       = "COUNTER_NOT_FOUND"
	CodeHouseMismatch         = "HOUSE_MISMATCH"
)

// CheckCeiling rejects amount when the other active payments of the source
// plus amount would exceed the agreed amount. Amounts are exact decimals.
func CheckCeiling(source client.FundingSource, agreed, others, amount decimal.Decimal) error {
	if others.Add(amount).GreaterThan(agreed) {
		headroom := agreed.Sub(others)
		if headroom.IsNegative() {
			headroom = decimal.Zero
		}
		return shared.NewDomainError(CodeCeilingExceeded,
			fmt.Sprintf("amount %s exceeds the agreed amount for %s; available: %s",
				valueobject.FormatCOP(amount), source.Label(), valueobject.FormatCOP(headroom)))
	}
	return nil
}

// CeilingChecker enforces that no funding source is overpaid
type CeilingChecker struct {
	payments PaymentRepository
}

// NewCeilingChecker creates a checker reading sums from payments
func NewCeilingChecker(payments PaymentRepository) *CeilingChecker {
	return &CeilingChecker{payments: payments}
}

// Check validates amount for (c, source). excludeID skips the payment being
// edited; pass uuid.Nil on create.
func (k *CeilingChecker) Check(ctx context.Context, c *client.Client, source client.FundingSource, amount decimal.Decimal, excludeID uuid.UUID) error {
	others, err := k.payments.SumActive(ctx, c.ID, source, excludeID)
	if err != nil {
		return fmt.Errorf("failed to sum active payments: %w", err)
	}
	return CheckCeiling(source, c.Financing.Agreed(source), others, amount)
}

// Outstanding returns agreed minus active payments for source
func (k *CeilingChecker) Outstanding(ctx context.Context, c *client.Client, source client.FundingSource) (decimal.Decimal, error) {
	paid, err := k.payments.SumActive(ctx, c.ID, source, uuid.Nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum active payments: %w", err)
	}
	return c.Financing.Agreed(source).Sub(paid), nil
}
