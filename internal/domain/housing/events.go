package housing

import (
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventBalanceMismatch is raised by reconciliation when stored totals drift from the ledger
const EventBalanceMismatch = "HouseBalanceMismatch"

// BalanceMismatchEvent reports a house whose totals disagree with its payments
type BalanceMismatchEvent struct {
	shared.BaseDomainEvent
	HouseLabel  string          `json:"house_label"`
	StoredPaid  decimal.Decimal `json:"stored_paid"`
	LedgerPaid  decimal.Decimal `json:"ledger_paid"`
	StoredSaldo decimal.Decimal `json:"stored_saldo"`
}

// NewBalanceMismatchEvent creates a BalanceMismatchEvent
func NewBalanceMismatchEvent(h *House, ledgerPaid decimal.Decimal) *BalanceMismatchEvent {
	return &BalanceMismatchEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBalanceMismatch, "House", h.ID, "sistema"),
		HouseLabel:      h.Label(),
		StoredPaid:      h.TotalPaid,
		LedgerPaid:      ledgerPaid,
		StoredSaldo:     h.Balance,
	}
}
