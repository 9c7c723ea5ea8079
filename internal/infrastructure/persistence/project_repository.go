package persistence

import (
	"context"
	"strings"

	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/domain/shared"
	"github.com/constructora/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements housing.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.Project, error) {
	var model models.ProjectModel
	found, err := first(r.db.WithContext(ctx).Where("id = ?", id), &model)
	if err != nil || !found {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists projects, filtered by a name search
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]housing.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("LOWER(nombre) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProjectModel
	if err := applyPaging(query, filter, ProjectSortFields, "nombre").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	projects := make([]housing.Project, len(rows))
	for i := range rows {
		projects[i] = *rows[i].ToDomain()
	}
	return projects, total, nil
}

// ExistsByName checks the case-insensitive name, ignoring excludeID
func (r *GormProjectRepository) ExistsByName(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("LOWER(nombre) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts a new project
func (r *GormProjectRepository) Save(ctx context.Context, p *housing.Project) error {
	model := models.ProjectModelFromDomain(p)
	return translateWriteError(r.db.WithContext(ctx).Create(model).Error, "project")
}

// SaveWithLock updates a project with optimistic locking
func (r *GormProjectRepository) SaveWithLock(ctx context.Context, p *housing.Project) error {
	model := models.ProjectModelFromDomain(p)
	model.Version = p.Version + 1
	if err := saveWithLock(r.db.WithContext(ctx), model, p.ID, p.Version); err != nil {
		return translateWriteError(err, "project")
	}
	p.Version++
	return nil
}

// Delete deletes a project
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.ProjectModel{}, id)
}

var _ housing.ProjectRepository = (*GormProjectRepository)(nil)
