package client

import (
	"context"
	"fmt"

	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// RenunciationReason is the void reason of payments unwound by a renunciation
const RenunciationReason = "Renuncia"

// RenunciationService handles clients leaving a purchase
type RenunciationService struct {
	scope         ledgerapp.TransactionScope
	renunciations client.RenunciationRepository
	publisher     shared.EventPublisher
}

// NewRenunciationService creates a RenunciationService
func NewRenunciationService(scope ledgerapp.TransactionScope, renunciations client.RenunciationRepository) *RenunciationService {
	return &RenunciationService{scope: scope, renunciations: renunciations}
}

// SetEventPublisher sets the publisher for post-commit events
func (s *RenunciationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Create snapshots what the client paid and flags the renunciation as
// pending. Payments are blocked until it is closed.
func (s *RenunciationService) Create(ctx context.Context, req CreateRenunciationRequest) (*RenunciationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "renunciation", "create")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrClientID, req.ClientID.String())

	var r *client.Renunciation
	err := s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		c, err := ledgerapp.LockClient(ctx, repos, req.ClientID)
		if err != nil {
			return err
		}
		if c.HouseID == nil {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("%s has no house assigned", c.DisplayName()))
		}
		h, err := ledgerapp.LockHouse(ctx, repos, *c.HouseID)
		if err != nil {
			return err
		}
		r, err = client.NewRenunciation(c, h.ID, h.Label(), h.TotalPaid, req.Penalty, req.Reason, req.Actor)
		if err != nil {
			return err
		}
		if err := c.StartRenunciation(r.ID); err != nil {
			return err
		}
		if err := repos.Renunciations().Save(ctx, r); err != nil {
			return fmt.Errorf("failed to save renunciation: %w", err)
		}
		return repos.Clients().SaveWithLock(ctx, c)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, client.NewRenunciationCreatedEvent(r, req.Actor))
	resp := ToRenunciationResponse(r)
	return &resp, nil
}

// Close records the refund, voids the client's active payments on the
// house, releases the house and retires the client, in one transaction.
func (s *RenunciationService) Close(ctx context.Context, id uuid.UUID, req CloseRenunciationRequest) (*RenunciationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "renunciation", "close")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrRenunciationID, id.String())

	var (
		r      *client.Renunciation
		voided int
	)
	err := s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		r, err = repos.Renunciations().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load renunciation: %w", err)
		}
		if r == nil {
			return shared.NewDomainError(shared.CodeNotFound, "renunciation not found")
		}
		c, err := ledgerapp.LockClient(ctx, repos, r.ClientID)
		if err != nil {
			return err
		}
		h, err := ledgerapp.LockHouse(ctx, repos, r.HouseID)
		if err != nil {
			return err
		}
		if c.IsProcessClosed() {
			return shared.NewDomainError(client.CodeProcessClosed, "the sale is invoiced; its payments can no longer be voided")
		}
		if err := r.Close(req.RefundReceiptURL, req.Actor); err != nil {
			return err
		}

		payments, err := repos.Payments().FindActiveByClientAndHouse(ctx, c.ID, h.ID)
		if err != nil {
			return fmt.Errorf("failed to list active payments: %w", err)
		}
		voided = 0
		for i := range payments {
			if _, _, err := ledgerapp.VoidPaymentInTx(ctx, repos, &payments[i], c, h, RenunciationReason, req.Actor); err != nil {
				return err
			}
			voided++
		}

		if h.BelongsTo(c.ID) {
			h.Release()
		}
		c.CompleteRenunciation()
		if err := repos.Houses().SaveWithLock(ctx, h); err != nil {
			return err
		}
		if err := repos.Clients().SaveWithLock(ctx, c); err != nil {
			return err
		}
		return repos.Renunciations().SaveWithLock(ctx, r)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, client.NewRenunciationClosedEvent(r, req.Actor))
	resp := ToRenunciationResponse(r)
	resp.VoidedPayments = voided
	return &resp, nil
}

// GetByID returns a renunciation
func (s *RenunciationService) GetByID(ctx context.Context, id uuid.UUID) (*RenunciationResponse, error) {
	r, err := s.renunciations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "renunciation not found")
	}
	resp := ToRenunciationResponse(r)
	return &resp, nil
}

// List lists renunciations
func (s *RenunciationService) List(ctx context.Context, filter RenunciationListFilter) ([]RenunciationResponse, int64, error) {
	f := client.RenunciationFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "created_at",
		}.Normalize(),
		Status:   client.RenunciationStatus(filter.Status),
		ClientID: filter.ClientID,
	}
	items, total, err := s.renunciations.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RenunciationResponse, len(items))
	for i := range items {
		out[i] = ToRenunciationResponse(&items[i])
	}
	return out, total, nil
}

func (s *RenunciationService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
}
