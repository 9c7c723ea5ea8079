package housing

import (
	"context"
	"fmt"

	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProjectService manages housing projects
type ProjectService struct {
	projects housing.ProjectRepository
	houses   housing.HouseRepository
}

// NewProjectService creates a ProjectService
func NewProjectService(projects housing.ProjectRepository, houses housing.HouseRepository) *ProjectService {
	return &ProjectService{projects: projects, houses: houses}
}

// Create creates a project with a unique name
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	p, err := housing.NewProject(req.Name, req.Location, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, p.Name, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.projects.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	resp := ToProjectResponse(p)
	return &resp, nil
}

// GetByID returns a project
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProjectResponse(p)
	return &resp, nil
}

// List lists projects
func (s *ProjectService) List(ctx context.Context, filter shared.Filter) ([]ProjectResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "nombre"
		filter.OrderDir = "asc"
	}
	projects, total, err := s.projects.FindAll(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = ToProjectResponse(&projects[i])
	}
	return out, total, nil
}

// Rename renames a project that no house references yet
func (s *ProjectService) Rename(ctx context.Context, id uuid.UUID, req RenameProjectRequest) (*ProjectResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnused(ctx, p); err != nil {
		return nil, err
	}
	if err := p.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, p.Name, p.ID); err != nil {
		return nil, err
	}
	if err := s.projects.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	resp := ToProjectResponse(p)
	return &resp, nil
}

// Delete removes a project without houses
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ensureUnused(ctx, p); err != nil {
		return err
	}
	return s.projects.Delete(ctx, p.ID)
}

func (s *ProjectService) find(ctx context.Context, id uuid.UUID) (*housing.Project, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound, "project not found")
	}
	return p, nil
}

func (s *ProjectService) ensureUnused(ctx context.Context, p *housing.Project) error {
	n, err := s.houses.CountByProject(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to count houses: %w", err)
	}
	if n > 0 {
		return shared.NewDomainError(housing.CodeProjectInUse,
			fmt.Sprintf("project %s has %d houses", p.Name, n))
	}
	return nil
}

func (s *ProjectService) ensureUniqueName(ctx context.Context, name string, excludeID uuid.UUID) error {
	exists, err := s.projects.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check project name: %w", err)
	}
	if exists {
		return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("project %s already exists", name))
	}
	return nil
}
