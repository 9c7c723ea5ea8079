package housing

import (
	"context"
	"fmt"

	ledgerapp "github.com/constructora/backend/internal/application/ledger"
	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// HouseService manages the house inventory
type HouseService struct {
	scope    ledgerapp.TransactionScope
	projects housing.ProjectRepository
	houses   housing.HouseRepository
}

// NewHouseService creates a HouseService. Price edits and deletes run in
// scope because they race with payment transactions on the same row.
func NewHouseService(scope ledgerapp.TransactionScope, projects housing.ProjectRepository, houses housing.HouseRepository) *HouseService {
	return &HouseService{scope: scope, projects: projects, houses: houses}
}

// Create adds a house to a project
func (s *HouseService) Create(ctx context.Context, req CreateHouseRequest) (*HouseResponse, error) {
	project, err := s.projects.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "project not found")
	}
	h, err := housing.NewHouse(req.ProjectID, req.Block, req.Number, req.BasePrice, req.Discount)
	if err != nil {
		return nil, err
	}
	exists, err := s.houses.ExistsByLocation(ctx, h.ProjectID, h.Block, h.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to check house location: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(housing.CodeDuplicateHouse,
			fmt.Sprintf("%s already exists in %s", h.Label(), project.Name))
	}
	if err := s.houses.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to save house: %w", err)
	}
	resp := ToHouseResponse(h)
	return &resp, nil
}

// GetByID returns a house
func (s *HouseService) GetByID(ctx context.Context, id uuid.UUID) (*HouseResponse, error) {
	h, err := s.houses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "house not found")
	}
	resp := ToHouseResponse(h)
	return &resp, nil
}

// List lists houses by project and availability
func (s *HouseService) List(ctx context.Context, filter HouseListFilter) ([]HouseResponse, int64, error) {
	f := housing.HouseFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "manzana",
			OrderDir: "asc",
			Search:   filter.Search,
		}.Normalize(),
		ProjectID: filter.ProjectID,
		Available: filter.Available,
	}
	houses, total, err := s.houses.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]HouseResponse, len(houses))
	for i := range houses {
		out[i] = ToHouseResponse(&houses[i])
	}
	return out, total, nil
}

// UpdatePrice changes the price; the balance follows from the paid total
func (s *HouseService) UpdatePrice(ctx context.Context, id uuid.UUID, req UpdateHousePriceRequest) (*HouseResponse, error) {
	var h *housing.House
	err := s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		var err error
		if h, err = ledgerapp.LockHouse(ctx, repos, id); err != nil {
			return err
		}
		if err := h.UpdatePrice(req.BasePrice, req.Discount); err != nil {
			return err
		}
		return repos.Houses().SaveWithLock(ctx, h)
	})
	if err != nil {
		return nil, err
	}
	resp := ToHouseResponse(h)
	return &resp, nil
}

// Delete removes an unassigned house without payments
func (s *HouseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.scope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		h, err := ledgerapp.LockHouse(ctx, repos, id)
		if err != nil {
			return err
		}
		n, err := repos.Payments().CountByHouse(ctx, h.ID)
		if err != nil {
			return fmt.Errorf("failed to count payments: %w", err)
		}
		if err := h.EnsureDeletable(n); err != nil {
			return err
		}
		return repos.Houses().Delete(ctx, h.ID)
	})
}
