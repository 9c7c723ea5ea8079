package persistence

import (
	"context"
	"strings"

	"github.com/constructora/backend/internal/domain/housing"
	"github.com/constructora/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormHouseRepository implements housing.HouseRepository using GORM
type GormHouseRepository struct {
	db *gorm.DB
}

// NewGormHouseRepository creates a new GormHouseRepository
func NewGormHouseRepository(db *gorm.DB) *GormHouseRepository {
	return &GormHouseRepository{db: db}
}

// FindByID finds a house by its ID
func (r *GormHouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*housing.House, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a house and holds its row lock until the
// surrounding transaction ends. SQLite ignores the locking clause.
func (r *GormHouseRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*housing.House, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormHouseRepository) find(db *gorm.DB, id uuid.UUID) (*housing.House, error) {
	var model models.HouseModel
	found, err := first(db.Where("id = ?", id), &model)
	if err != nil || !found {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists houses by project, availability and block/number search
func (r *GormHouseRepository) FindAll(ctx context.Context, filter housing.HouseFilter) ([]housing.House, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.HouseModel{})
	if filter.ProjectID != nil {
		query = query.Where("proyecto_id = ?", *filter.ProjectID)
	}
	if filter.Available != nil {
		if *filter.Available {
			query = query.Where("cliente_id IS NULL")
		} else {
			query = query.Where("cliente_id IS NOT NULL")
		}
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(manzana) LIKE ? OR LOWER(numero_casa) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.HouseModel
	if err := applyPaging(query, filter.Filter, HouseSortFields, "manzana").
		Order("numero_casa ASC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	houses := make([]housing.House, len(rows))
	for i := range rows {
		houses[i] = *rows[i].ToDomain()
	}
	return houses, total, nil
}

// FindAllIDs lists every house id
func (r *GormHouseRepository) FindAllIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.HouseModel{}).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// CountByProject counts the houses of a project
func (r *GormHouseRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HouseModel{}).
		Where("proyecto_id = ?", projectID).
		Count(&count).Error
	return count, err
}

// ExistsByLocation checks block and number within a project
func (r *GormHouseRepository) ExistsByLocation(ctx context.Context, projectID uuid.UUID, block, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.HouseModel{}).
		Where("proyecto_id = ? AND manzana = ? AND numero_casa = ?", projectID, strings.TrimSpace(block), strings.TrimSpace(number)).
		Count(&count).Error
	return count > 0, err
}

// Save inserts a new house
func (r *GormHouseRepository) Save(ctx context.Context, h *housing.House) error {
	model := models.HouseModelFromDomain(h)
	return translateWriteError(r.db.WithContext(ctx).Create(model).Error, "house")
}

// SaveWithLock updates a house with optimistic locking
func (r *GormHouseRepository) SaveWithLock(ctx context.Context, h *housing.House) error {
	model := models.HouseModelFromDomain(h)
	model.Version = h.Version + 1
	if err := saveWithLock(r.db.WithContext(ctx), model, h.ID, h.Version); err != nil {
		return err
	}
	h.Version++
	return nil
}

// Delete deletes a house
func (r *GormHouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(r.db.WithContext(ctx), &models.HouseModel{}, id)
}

var _ housing.HouseRepository = (*GormHouseRepository)(nil)
