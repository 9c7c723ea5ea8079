package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the "estadoProceso" of a payment
type PaymentStatus string

const (
	PaymentActive PaymentStatus = "activo"
	PaymentVoided PaymentStatus = "anulado"
)

// IsValid checks if the status is known
func (s PaymentStatus) IsValid() bool {
	return s == PaymentActive || s == PaymentVoided
}

// String returns the stored representation
func (s PaymentStatus) String() string {
	return string(s)
}

// CondonationMethod is the payment method of forgiven balances
const CondonationMethod = "Condonación de Saldo"

// PaymentSequence is the counter that numbers payments
const PaymentSequence = "abonos"

// Payment is an installment or disbursement ("abono") against a funding
// source. Payments are never deleted; voiding flips their status.
type Payment struct {
	shared.BaseAggregateRoot
	Sequence       int64
	ClientID       uuid.UUID
	HouseID        uuid.UUID
	ProjectID      uuid.UUID
	Source         client.FundingSource
	Amount         decimal.Decimal
	PaidOn         time.Time
	Method         string
	Notes          string
	ReceiptURL     string
	Status         PaymentStatus
	VoidReason     string
	VoidedBy       string
	VoidedAt       *time.Time
	IsCondonation  bool
	// OriginalSource is the label the forgiven balance was owed under
	OriginalSource string
	RegisteredBy   string
}

// PaymentInput carries the caller-provided fields of a payment
type PaymentInput struct {
	ClientID   uuid.UUID
	HouseID    uuid.UUID
	ProjectID  uuid.UUID
	Source     client.FundingSource
	Amount     decimal.Decimal
	PaidOn     time.Time
	Method     string
	Notes      string
	ReceiptURL string
	Actor      string
}

// Validate checks the fields of a payment input
func (in PaymentInput) Validate() error {
	if !in.Source.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("unknown funding source %q", in.Source))
	}
	if in.ClientID == uuid.Nil || in.HouseID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "client and house are required")
	}
	if !in.Amount.Round(valueobject.AmountPlaces).IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "amount must be positive")
	}
	if in.PaidOn.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidInput, "payment date is required")
	}
	if strings.TrimSpace(in.Method) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "payment method is required")
	}
	return nil
}

// NewPayment creates an active payment numbered sequence
func NewPayment(sequence int64, in PaymentInput) (*Payment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if sequence <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "payment sequence must be positive")
	}
	return &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Sequence:          sequence,
		ClientID:          in.ClientID,
		HouseID:           in.HouseID,
		ProjectID:         in.ProjectID,
		Source:            in.Source,
		Amount:            in.Amount.Round(valueobject.AmountPlaces),
		PaidOn:            dateOnly(in.PaidOn),
		Method:            strings.TrimSpace(in.Method),
		Notes:             strings.TrimSpace(in.Notes),
		ReceiptURL:        strings.TrimSpace(in.ReceiptURL),
		Status:            PaymentActive,
		RegisteredBy:      in.Actor,
	}, nil
}

// NewCondonation books a forgiven balance as a zero-cash payment
func NewCondonation(sequence int64, in PaymentInput, originalSource string) (*Payment, error) {
	in.Method = CondonationMethod
	p, err := NewPayment(sequence, in)
	if err != nil {
		return nil, err
	}
	p.IsCondonation = true
	p.OriginalSource = strings.TrimSpace(originalSource)
	if p.OriginalSource == "" {
		p.OriginalSource = in.Source.Label()
	}
	return p, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsActive reports whether the payment counts toward totals
func (p *Payment) IsActive() bool {
	return p.Status == PaymentActive
}

// Void marks the payment as anulado
func (p *Payment) Void(reason, user string) error {
	if p.Status != PaymentActive {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("payment #%d is not active", p.Sequence))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "a reason is required to void a payment")
	}
	now := time.Now()
	p.Status = PaymentVoided
	p.VoidReason = reason
	p.VoidedBy = user
	p.VoidedAt = &now
	p.Touch()
	return nil
}

// RestoreVoid reactivates a voided payment and clears the void data
func (p *Payment) RestoreVoid() error {
	if p.Status != PaymentVoided {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("payment #%d is not voided", p.Sequence))
	}
	p.Status = PaymentActive
	p.VoidReason = ""
	p.VoidedBy = ""
	p.VoidedAt = nil
	p.Touch()
	return nil
}

// PaymentEdit carries the editable fields of a payment
type PaymentEdit struct {
	Amount     decimal.Decimal
	PaidOn     time.Time
	Method     string
	Notes      string
	ReceiptURL string
}

// Edit overwrites the editable fields and returns the amount delta
func (p *Payment) Edit(e PaymentEdit) (decimal.Decimal, error) {
	if p.Status != PaymentActive {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("payment #%d is not active and cannot be edited", p.Sequence))
	}
	amount := e.Amount.Round(valueobject.AmountPlaces)
	if !amount.IsPositive() {
		return decimal.Zero, shared.NewDomainError(shared.CodeInvalidInput, "amount must be positive")
	}
	delta := amount.Sub(p.Amount)
	p.Amount = amount
	if !e.PaidOn.IsZero() {
		p.PaidOn = dateOnly(e.PaidOn)
	}
	if m := strings.TrimSpace(e.Method); m != "" && !p.IsCondonation {
		p.Method = m
	}
	p.Notes = strings.TrimSpace(e.Notes)
	if u := strings.TrimSpace(e.ReceiptURL); u != "" {
		p.ReceiptURL = u
	}
	p.Touch()
	return delta, nil
}
