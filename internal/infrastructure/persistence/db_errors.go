package persistence

import (
	"errors"

	"github.com/constructora/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the store reacts to
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// isRetryable reports whether a failed transaction can run again
func isRetryable(err error) bool {
	if shared.IsDomainError(err, shared.CodeConcurrentModification) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// translateWriteError turns unique violations into ALREADY_EXISTS
func translateWriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewDomainError(shared.CodeAlreadyExists, what+" already exists")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return shared.NewDomainError(shared.CodeAlreadyExists, what+" already exists")
	}
	return err
}

// first runs query.First and maps "no rows" to found=false
func first(query *gorm.DB, dest any) (bool, error) {
	if err := query.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// saveWithLock writes every column of model when the stored version still
// equals expected. The caller sets the model's version to expected+1.
func saveWithLock(db *gorm.DB, model any, id uuid.UUID, expected int) error {
	result := db.Model(model).
		Where("id = ? AND version = ?", id, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

// deleteByID removes one row, NOT_FOUND when nothing matched
func deleteByID(db *gorm.DB, model any, id uuid.UUID) error {
	result := db.Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
