package persistence

import (
	"context"

	"github.com/constructora/backend/internal/domain/ledger"
	"github.com/constructora/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels lists every table model, in creation order
func AllModels() []any {
	return []any{
		&models.ProjectModel{},
		&models.HouseModel{},
		&models.ClientModel{},
		&models.RenunciationModel{},
		&models.PaymentModel{},
		&models.CounterModel{},
		&models.AuditLogModel{},
		&models.NotificationModel{},
	}
}

// AutoMigrate creates or alters the tables from the models and seeds the
// payment counter. The SQL migrations are the source of truth in
// production; this is for development databases and tests.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(AllModels()...); err != nil {
		return err
	}
	return EnsureCounter(ctx, db, ledger.PaymentSequence)
}

// EnsureCounter creates the named counter at zero when it is missing
func EnsureCounter(ctx context.Context, db *gorm.DB, name string) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CounterModel{Name: name, CurrentNumber: 0}).Error
}
