package client

import (
	"context"
	"fmt"

	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/domain/shared/valueobject"
	"github.com/constructora/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// ClientService handles onboarding and client queries
type ClientService struct {
	scope     ledgerapp.TransactionScope
	clients   client.ClientRepository
	publisher shared.EventPublisher
}

// NewClientService creates a ClientService
func NewClientService(scope ledgerapp.TransactionScope, clients client.ClientRepository) *ClientService {
	return &ClientService{scope: scope, clients: clients}
}

// SetEventPublisher sets the publisher for post-commit events
func (s *ClientService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Onboard creates a client and assigns the house in one transaction. The
// financing must add up to the house price.
func (s *ClientService) Onboard(ctx context.Context, req OnboardClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "onboard")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrHouseID, req.HouseID.String())

	var (
		c          *client.Client
		houseLabel string
	)
	err := s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		exists, err := repos.Clients().ExistsByDocument(ctx, req.DocumentNumber)
		if err != nil {
			return fmt.Errorf("failed to check document number: %w", err)
		}
		if exists {
			return shared.NewDomainError(client.CodeDuplicateDocument,
				fmt.Sprintf("a client with document %s already exists", req.DocumentNumber))
		}
		h, err := ledgerapp.LockHouse(ctx, repos, req.HouseID)
		if err != nil {
			return err
		}
		if h.ProjectID != req.ProjectID {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("house %s does not belong to the selected project", h.Label()))
		}
		c, err = client.NewClient(req.toDomain(), req.ProjectID, h.ID, req.Financing)
		if err != nil {
			return err
		}
		if total := c.Financing.Total(); !total.Equal(h.FinalPrice) {
			return shared.NewDomainError(client.CodeFinancingMismatch,
				fmt.Sprintf("financing adds up to %s but %s costs %s",
					valueobject.FormatCOP(total), h.Label(), valueobject.FormatCOP(h.FinalPrice)))
		}
		if err := h.AssignClient(c.ID); err != nil {
			return err
		}
		if err := repos.Clients().Save(ctx, c); err != nil {
			return fmt.Errorf("failed to save client: %w", err)
		}
		if err := repos.Houses().SaveWithLock(ctx, h); err != nil {
			return err
		}
		houseLabel = h.Label()
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publish(ctx, client.NewClientOnboardedEvent(c, houseLabel, req.Actor))
	resp := ToClientResponse(c)
	return &resp, nil
}

// GetByID returns a client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := findClient(ctx, s.clients, id)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// List lists clients
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) ([]ClientListItem, int64, error) {
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	f := client.ClientFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  orderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		Status:    client.Status(filter.Status),
		ProjectID: filter.ProjectID,
	}
	clients, total, err := s.clients.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	items := make([]ClientListItem, len(clients))
	for i := range clients {
		c := &clients[i]
		items[i] = ClientListItem{
			ID:             c.ID,
			Name:           c.DisplayName(),
			DocumentNumber: c.DocumentNumber,
			ProjectID:      c.ProjectID,
			HouseID:        c.HouseID,
			Status:         c.Status,
			StatusView:     client.DeriveClientStatus(c),
		}
	}
	return items, total, nil
}

// Update replaces the contact details of a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	var c *client.Client
	err := s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		if c, err = ledgerapp.LockClient(ctx, repos, id); err != nil {
			return err
		}
		data := req.toDomain()
		if data.DocumentNumber != c.DocumentNumber {
			exists, err := repos.Clients().ExistsByDocument(ctx, data.DocumentNumber)
			if err != nil {
				return fmt.Errorf("failed to check document number: %w", err)
			}
			if exists {
				return shared.NewDomainError(client.CodeDuplicateDocument,
					fmt.Sprintf("a client with document %s already exists", data.DocumentNumber))
			}
		}
		if err := c.UpdatePersonalData(data); err != nil {
			return err
		}
		return repos.Clients().SaveWithLock(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

func (s *ClientService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
}

func findClient(ctx context.Context, clients client.ClientRepository, id uuid.UUID) (*client.Client, error) {
	c, err := clients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "client not found")
	}
	return c, nil
}
