package housing

import (
	"strings"

	"github.com/constructora/backend/internal/domain/shared"
)

// Project is a housing development
type Project struct {
	shared.BaseAggregateRoot
	Name        string
	Location    string
	Description string
}

// NewProject creates a project
func NewProject(name, location, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "project name cannot be empty")
	}
	if len(name) > 120 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "project name cannot exceed 120 characters")
	}
	return &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Location:          strings.TrimSpace(location),
		Description:       strings.TrimSpace(description),
	}, nil
}

// Rename changes the name. Callers must check that no house references the project.
func (p *Project) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "project name cannot be empty")
	}
	p.Name = name
	p.Touch()
	return nil
}
