package housing

import (
	"context"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectRepository persists projects
type ProjectRepository interface {
	// FindByID returns nil when the project does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, int64, error)
	ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error)
	Save(ctx context.Context, p *Project) error
	SaveWithLock(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// HouseFilter narrows house listings
type HouseFilter struct {
	shared.Filter
	ProjectID *uuid.UUID
	// Available limits the listing to unassigned houses
	Available *bool
}

// HouseRepository persists houses
type HouseRepository interface {
	// FindByID returns nil when the house does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*House, error)
	// FindByIDForUpdate locks the house row for the rest of the transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*House, error)
	FindAll(ctx context.Context, filter HouseFilter) ([]House, int64, error)
	// FindAllIDs lists every house id, for batch jobs
	FindAllIDs(ctx context.Context) ([]uuid.UUID, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
	ExistsByLocation(ctx context.Context, projectID uuid.UUID, block, number string) (bool, error)
	Save(ctx context.Context, h *House) error
	SaveWithLock(ctx context.Context, h *House) error
	Delete(ctx context.Context, id uuid.UUID) error
}
