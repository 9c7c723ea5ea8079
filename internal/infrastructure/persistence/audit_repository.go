package persistence

import (
	"context"

	"github.com/constructora/backend/internal/domain/audit"
	"github.com/constructora/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var auditSortFields = map[string]bool{"created_at": true}

// GormAuditLogRepository implements audit.LogRepository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Create appends an audit entry
func (r *GormAuditLogRepository) Create(ctx context.Context, l *audit.Log) error {
	model := &models.AuditLogModel{}
	model.FromDomain(l)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindAll lists audit entries, newest first
func (r *GormAuditLogRepository) FindAll(ctx context.Context, filter audit.LogFilter) ([]audit.Log, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLogModel{})
	if filter.EventType != "" {
		query = query.Where("tipo_evento = ?", filter.EventType)
	}
	if filter.Actor != "" {
		query = query.Where("usuario = ?", filter.Actor)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AuditLogModel
	if err := applyPaging(query, filter.Filter, auditSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	logs := make([]audit.Log, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, total, nil
}

var _ audit.LogRepository = (*GormAuditLogRepository)(nil)

// GormNotificationRepository implements audit.NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *audit.Notification) error {
	model := &models.NotificationModel{}
	model.FromDomain(n)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByID finds a notification by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.Notification, error) {
	var model models.NotificationModel
	found, err := first(r.db.WithContext(ctx).Where("id = ?", id), &model)
	if err != nil || !found {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists notifications, newest first
func (r *GormNotificationRepository) FindAll(ctx context.Context, filter audit.NotificationFilter) ([]audit.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.NotificationModel{})
	if filter.UnreadOnly {
		query = query.Where("leida = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.NotificationModel
	if err := applyPaging(query, filter.Filter, auditSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]audit.Notification, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save updates a notification's read flag
func (r *GormNotificationRepository) Save(ctx context.Context, n *audit.Notification) error {
	result := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{"leida": n.Read, "updated_at": n.UpdatedAt})
	return result.Error
}

var _ audit.NotificationRepository = (*GormNotificationRepository)(nil)
