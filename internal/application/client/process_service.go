package client

import (
	"context"
	"fmt"

	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// ProcessService edits the process map and financing of a client
type ProcessService struct {
	scope     ledgerapp.TransactionScope
	clients   client.ClientRepository
	publisher shared.EventPublisher
}

// NewProcessService creates a ProcessService
func NewProcessService(scope ledgerapp.TransactionScope, clients client.ClientRepository) *ProcessService {
	return &ProcessService{scope: scope, clients: clients}
}

// SetEventPublisher sets the publisher for post-commit events
func (s *ProcessService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// CompleteStep completes a document step with its evidence
func (s *ProcessService) CompleteStep(ctx context.Context, clientID uuid.UUID, step client.StepKey, req CompleteStepRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "process", "complete_step")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrClientID, clientID.String(), telemetry.SpanAttrStep, string(step))

	date, err := ledgerapp.ParseDate(req.Date)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var c *client.Client
	err = s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		if c, err = ledgerapp.LockClient(ctx, repos, clientID); err != nil {
			return err
		}
		if err := c.CompleteStep(step, date, req.Evidence, req.Actor); err != nil {
			return err
		}
		return repos.Clients().SaveWithLock(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, client.NewStepCompletedEvent(c, step, req.Actor))
	resp := ToClientResponse(c)
	return &resp, nil
}

// ReopenStep reopens a completed step. A disbursement step backed by an
// active payment cannot be reopened; the payment must be voided instead.
func (s *ProcessService) ReopenStep(ctx context.Context, clientID uuid.UUID, step client.StepKey, req ReopenStepRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "process", "reopen_step")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrClientID, clientID.String(), telemetry.SpanAttrStep, string(step))

	var c *client.Client
	err := s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		if c, err = ledgerapp.LockClient(ctx, repos, clientID); err != nil {
			return err
		}
		hasActive := false
		if source, ok := client.SourceForDisbursementStep(step); ok {
			n, err := repos.Payments().CountActive(ctx, c.ID, source, uuid.Nil)
			if err != nil {
				return fmt.Errorf("failed to count active payments: %w", err)
			}
			hasActive = n > 0
		}
		if err := c.ReopenStep(step, req.Reason, req.Actor, hasActive); err != nil {
			return err
		}
		return repos.Clients().SaveWithLock(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, client.NewStepReopenedEvent(c, step, req.Reason, req.Actor))
	resp := ToClientResponse(c)
	return &resp, nil
}

// UpdateFinancing replaces the agreed amounts. No source may end below what
// is already paid, and the total must still match the house price.
func (s *ProcessService) UpdateFinancing(ctx context.Context, clientID uuid.UUID, req UpdateFinancingRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "process", "update_financing")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrClientID, clientID.String())

	var (
		c              *client.Client
		added, removed []client.StepKey
	)
	err := s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		if c, err = ledgerapp.LockClient(ctx, repos, clientID); err != nil {
			return err
		}
		if c.Status != client.StatusActive {
			return shared.NewDomainError(client.CodeClientInactive, "financing of a retired client cannot change")
		}
		f := req.Financing.Normalized()
		if err := f.Validate(); err != nil {
			return err
		}
		totals, err := repos.Payments().SumActiveBySource(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("failed to sum active payments: %w", err)
		}
		for _, t := range totals {
			if t.Total.GreaterThan(f.Agreed(t.Source)) {
				return shared.NewDomainError(ledger.CodeCeilingExceeded,
					fmt.Sprintf("%s already has %s in active payments; the agreed amount cannot be lower",
						t.Source.Label(), valueobject.FormatCOP(t.Total)))
			}
		}
		if c.HouseID != nil {
			h, err := ledgerapp.LockHouse(ctx, repos, *c.HouseID)
			if err != nil {
				return err
			}
			if total := f.Total(); !total.Equal(h.FinalPrice) {
				return shared.NewDomainError(client.CodeFinancingMismatch,
					fmt.Sprintf("financing adds up to %s but %s costs %s",
						valueobject.FormatCOP(total), h.Label(), valueobject.FormatCOP(h.FinalPrice)))
			}
		}
		if added, removed, err = c.ChangeFinancing(f); err != nil {
			return err
		}
		return repos.Clients().SaveWithLock(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, client.NewFinancingChangedEvent(c, added, removed, req.Actor))
	resp := ToClientResponse(c)
	return &resp, nil
}

// GetStatus returns the derived status of a client
func (s *ProcessService) GetStatus(ctx context.Context, clientID uuid.UUID) (client.StatusView, error) {
	c, err := findClient(ctx, s.clients, clientID)
	if err != nil {
		return client.StatusView{}, err
	}
	return client.DeriveClientStatus(c), nil
}

func (s *ProcessService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
}
