package ledger

import (
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventPaymentRegistered   = "PaymentRegistered"
	EventCreditDisbursed     = "CreditDisbursed"
	EventPaymentUpdated      = "PaymentUpdated"
	EventPaymentVoided       = "PaymentVoided"
	EventPaymentVoidReverted = "PaymentVoidReverted"
	EventBalanceCondoned     = "BalanceCondoned"
)

// PaymentEventTypes lists every ledger event type
func PaymentEventTypes() []string {
	return []string{
		EventPaymentRegistered, EventCreditDisbursed, EventPaymentUpdated,
		EventPaymentVoided, EventPaymentVoidReverted, EventBalanceCondoned,
	}
}

// PaymentEvent describes a committed ledger change together with the
// display data needed to write audit and notification text.
type PaymentEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID            `json:"payment_id"`
	Sequence       int64                `json:"consecutivo"`
	ClientID       uuid.UUID            `json:"client_id"`
	HouseID        uuid.UUID            `json:"house_id"`
	ProjectID      uuid.UUID            `json:"project_id"`
	Source         client.FundingSource `json:"fuente"`
	Amount         decimal.Decimal      `json:"monto"`
	PreviousAmount decimal.Decimal      `json:"monto_anterior"`
	Method         string               `json:"metodo_pago"`
	Reason         string               `json:"motivo,omitempty"`
	ClientName     string               `json:"client_name"`
	HouseLabel     string               `json:"house_label"`
	ProjectName    string               `json:"project_name"`
	HouseTotalPaid decimal.Decimal      `json:"total_abonado"`
	HouseBalance   decimal.Decimal      `json:"saldo_pendiente"`
	// Step is the process step completed or reopened by the change, if any
	Step            client.StepKey `json:"step,omitempty"`
	SourceFullyPaid bool           `json:"source_fully_paid"`
}

// NewPaymentEvent creates a ledger event of eventType for p
func NewPaymentEvent(eventType string, p *Payment, actor string) *PaymentEvent {
	return &PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Payment", p.ID, actor),
		PaymentID:       p.ID,
		Sequence:        p.Sequence,
		ClientID:        p.ClientID,
		HouseID:         p.HouseID,
		ProjectID:       p.ProjectID,
		Source:          p.Source,
		Amount:          p.Amount,
		Method:          p.Method,
		Reason:          p.VoidReason,
	}
}
