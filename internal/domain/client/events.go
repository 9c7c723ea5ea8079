package client

import (
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names
const (
	EventClientOnboarded     = "ClientOnboarded"
	EventStepCompleted       = "ProcessStepCompleted"
	EventStepReopened        = "ProcessStepReopened"
	EventFinancingChanged    = "FinancingChanged"
	EventRenunciationCreated = "RenunciationCreated"
	EventRenunciationClosed  = "RenunciationClosed"

	aggregateClient       = "Client"
	aggregateRenunciation = "Renunciation"
)

// ClientOnboardedEvent is raised when a client is created and bound to a house
type ClientOnboardedEvent struct {
	shared.BaseDomainEvent
	ClientName string `json:"client_name"`
	HouseLabel string `json:"house_label"`
}

// NewClientOnboardedEvent creates a ClientOnboardedEvent
func NewClientOnboardedEvent(c *Client, houseLabel, actor string) *ClientOnboardedEvent {
	return &ClientOnboardedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventClientOnboarded, aggregateClient, c.ID, actor),
		ClientName:      c.DisplayName(),
		HouseLabel:      houseLabel,
	}
}

// StepChangedEvent is raised when a step is completed or reopened by hand
type StepChangedEvent struct {
	shared.BaseDomainEvent
	ClientName string  `json:"client_name"`
	Step       StepKey `json:"step"`
	StepLabel  string  `json:"step_label"`
	Reason     string  `json:"reason,omitempty"`
}

// NewStepCompletedEvent creates a ProcessStepCompleted event
func NewStepCompletedEvent(c *Client, step StepKey, actor string) *StepChangedEvent {
	return &StepChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStepCompleted, aggregateClient, c.ID, actor),
		ClientName:      c.DisplayName(),
		Step:            step,
		StepLabel:       step.Label(),
	}
}

// NewStepReopenedEvent creates a ProcessStepReopened event
func NewStepReopenedEvent(c *Client, step StepKey, reason, actor string) *StepChangedEvent {
	return &StepChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStepReopened, aggregateClient, c.ID, actor),
		ClientName:      c.DisplayName(),
		Step:            step,
		StepLabel:       step.Label(),
		Reason:          reason,
	}
}

// FinancingChangedEvent is raised when the agreed amounts change
type FinancingChangedEvent struct {
	shared.BaseDomainEvent
	ClientName string    `json:"client_name"`
	Financing  Financing `json:"financing"`
	Added      []StepKey `json:"added_steps"`
	Removed    []StepKey `json:"removed_steps"`
}

// NewFinancingChangedEvent creates a FinancingChangedEvent
func NewFinancingChangedEvent(c *Client, added, removed []StepKey, actor string) *FinancingChangedEvent {
	return &FinancingChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventFinancingChanged, aggregateClient, c.ID, actor),
		ClientName:      c.DisplayName(),
		Financing:       c.Financing,
		Added:           added,
		Removed:         removed,
	}
}

// RenunciationEvent is raised when a renunciation is created or closed
type RenunciationEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID       `json:"client_id"`
	ClientName string          `json:"client_name"`
	HouseLabel string          `json:"house_label"`
	TotalPaid  decimal.Decimal `json:"total_paid"`
	Penalty    decimal.Decimal `json:"penalty"`
	Refund     decimal.Decimal `json:"refund"`
}

func newRenunciationEvent(eventType string, r *Renunciation, actor string) *RenunciationEvent {
	return &RenunciationEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateRenunciation, r.ID, actor),
		ClientID:        r.ClientID,
		ClientName:      r.ClientName,
		HouseLabel:      r.HouseLabel,
		TotalPaid:       r.TotalPaid,
		Penalty:         r.Penalty,
		Refund:          r.Refund,
	}
}

// NewRenunciationCreatedEvent creates a RenunciationCreated event
func NewRenunciationCreatedEvent(r *Renunciation, actor string) *RenunciationEvent {
	return newRenunciationEvent(EventRenunciationCreated, r, actor)
}

// NewRenunciationClosedEvent creates a RenunciationClosed event
func NewRenunciationClosedEvent(r *Renunciation, actor string) *RenunciationEvent {
	return newRenunciationEvent(EventRenunciationClosed, r, actor)
}
