package client

import (
	"strings"
	"time"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RenunciationStatus tracks a renunciation from request to refund
type RenunciationStatus string

const (
	RenunciationPending RenunciationStatus = "pendiente"
	RenunciationClosed  RenunciationStatus = "cerrada"
)

// IsValid checks if the status is known
func (s RenunciationStatus) IsValid() bool {
	return s == RenunciationPending || s == RenunciationClosed
}

// Renunciation is the snapshot of a client's exit from a purchase
type Renunciation struct {
	shared.BaseAggregateRoot
	ClientID   uuid.UUID
	HouseID    uuid.UUID
	ProjectID  uuid.UUID
	ClientName string
	HouseLabel string
	// TotalPaid is what the client had paid when renouncing
	TotalPaid        decimal.Decimal
	Penalty          decimal.Decimal
	Refund           decimal.Decimal
	Reason           string
	Status           RenunciationStatus
	RenouncedAt      time.Time
	ClosedAt         *time.Time
	RefundReceiptURL string
	RequestedBy      string
	ClosedBy         string
}

// NewRenunciation builds a pending renunciation. The refund is the paid
// amount minus the penalty.
func NewRenunciation(c *Client, houseID uuid.UUID, houseLabel string, totalPaid, penalty decimal.Decimal, reason, user string) (*Renunciation, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "a reason is required")
	}
	penalty = penalty.Round(valueobject.AmountPlaces)
	if penalty.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "penalty cannot be negative")
	}
	if penalty.GreaterThan(totalPaid) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "penalty cannot exceed the amount paid")
	}
	return &Renunciation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          c.ID,
		HouseID:           houseID,
		ProjectID:         c.ProjectID,
		ClientName:        c.DisplayName(),
		HouseLabel:        houseLabel,
		TotalPaid:         totalPaid,
		Penalty:           penalty,
		Refund:            totalPaid.Sub(penalty),
		Reason:            strings.TrimSpace(reason),
		Status:            RenunciationPending,
		RenouncedAt:       time.Now(),
		RequestedBy:       user,
	}, nil
}

// Close records the refund and ends the renunciation
func (r *Renunciation) Close(refundReceiptURL, user string) error {
	if r.Status != RenunciationPending {
		return shared.NewDomainError(shared.CodeInvalidState, "renunciation is already closed")
	}
	if strings.TrimSpace(refundReceiptURL) == "" && r.Refund.IsPositive() {
		return shared.NewDomainError(CodeMissingEvidence, "a refund receipt is required")
	}
	now := time.Now()
	r.Status = RenunciationClosed
	r.ClosedAt = &now
	r.RefundReceiptURL = strings.TrimSpace(refundReceiptURL)
	r.ClosedBy = user
	r.Touch()
	return nil
}
