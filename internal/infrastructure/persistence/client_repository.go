package persistence

import (
	"context"
	"strings"

	"github.com/constructora/backend/internal/domain/client"
	"github.com/constructora/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormClientRepository implements client.ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by its ID
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a client and locks its row. Every ledger
// write takes this lock first.
func (r *GormClientRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormClientRepository) find(db *gorm.DB, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
	found, err := first(db.Where("id = ?", id), &model)
	if err != nil || !found {
		return nil, err
	}
	return model.ToDomain()
}

// FindAll lists clients by status, project and a name/document search
func (r *GormClientRepository) FindAll(ctx context.Context, filter client.ClientFilter) ([]client.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProjectID != nil {
		query = query.Where("proyecto_id = ?", *filter.ProjectID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(nombres) LIKE ? OR LOWER(apellidos) LIKE ? OR cedula LIKE ?", like, like, "%"+s+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ClientModel
	if err := applyPaging(query, filter.Filter, ClientSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	clients := make([]client.Client, 0, len(rows))
	for i := range rows {
		c, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, err
		}
		clients = append(clients, *c)
	}
	return clients, total, nil
}

// ExistsByDocument checks whether a document number is registered
func (r *GormClientRepository) ExistsByDocument(ctx context.Context, documentNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ClientModel{}).
		Where("cedula = ?", strings.TrimSpace(documentNumber)).
		Count(&count).Error
	return count > 0, err
}

// Save inserts a new client
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	model := &models.ClientModel{}
	if err := model.FromDomain(c); err != nil {
		return err
	}
	return translateWriteError(r.db.WithContext(ctx).Create(model).Error, "client")
}

// SaveWithLock updates a client with optimistic locking
func (r *GormClientRepository) SaveWithLock(ctx context.Context, c *client.Client) error {
	model := &models.ClientModel{}
	if err := model.FromDomain(c); err != nil {
		return err
	}
	model.Version = c.Version + 1
	if err := saveWithLock(r.db.WithContext(ctx), model, c.ID, c.Version); err != nil {
		return translateWriteError(err, "client")
	}
	c.Version++
	return nil
}

var _ client.ClientRepository = (*GormClientRepository)(nil)

// GormRenunciationRepository implements client.RenunciationRepository using GORM
type GormRenunciationRepository struct {
	db *gorm.DB
}

// NewGormRenunciationRepository creates a new GormRenunciationRepository
func NewGormRenunciationRepository(db *gorm.DB) *GormRenunciationRepository {
	return &GormRenunciationRepository{db: db}
}

// FindByID finds a renunciation by its ID
func (r *GormRenunciationRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Renunciation, error) {
	var model models.RenunciationModel
	found, err := first(r.db.WithContext(ctx).Where("id = ?", id), &model)
	if err != nil || !found {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists renunciations by status and client
func (r *GormRenunciationRepository) FindAll(ctx context.Context, filter client.RenunciationFilter) ([]client.Renunciation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RenunciationModel{})
	if filter.Status != "" {
		query = query.Where("estado = ?", filter.Status)
	}
	if filter.ClientID != nil {
		query = query.Where("cliente_id = ?", *filter.ClientID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.RenunciationModel
	if err := applyPaging(query, filter.Filter, RenunciationSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]client.Renunciation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save inserts a new renunciation
func (r *GormRenunciationRepository) Save(ctx context.Context, ren *client.Renunciation) error {
	return r.db.WithContext(ctx).Create(models.RenunciationModelFromDomain(ren)).Error
}

// SaveWithLock updates a renunciation with optimistic locking
func (r *GormRenunciationRepository) SaveWithLock(ctx context.Context, ren *client.Renunciation) error {
	model := models.RenunciationModelFromDomain(ren)
	model.Version = ren.Version + 1
	if err := saveWithLock(r.db.WithContext(ctx), model, ren.ID, ren.Version); err != nil {
		return err
	}
	ren.Version++
	return nil
}

var _ client.RenunciationRepository = (*GormRenunciationRepository)(nil)
