package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/dentalshop/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// saveVersioned writes row with optimistic locking. The UPDATE only matches
// when the stored version still equals *version; on success *version is
// advanced by one. A row that does not exist yet is inserted unchanged.
func saveVersioned[M any](ctx context.Context, db *gorm.DB, row *M, id uuid.UUID, version *int) error {
	loaded := *version
	*version = loaded + 1

	result := db.WithContext(ctx).
		Model(row).
		Where("version = ?", loaded).
		Select("*").
		Omit("id", "created_at").
		Updates(row)
	if result.Error != nil {
		*version = loaded
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	*version = loaded
	var count int64
	if err := db.WithContext(ctx).Model(new(M)).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}
	return db.WithContext(ctx).Create(row).Error
}

// translate maps gorm and driver errors onto the domain sentinels. Unique
// violations are matched on the message too, for drivers gorm does not
// translate without TranslateError.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "duplicate key value"),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return shared.ErrAlreadyExists
	}
	return err
}
