package persistence

import (
	"context"
	"strings"

	"github.com/dentalshop/backend/internal/domain/identity"
	"github.com/dentalshop/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var _ identity.UserRepository = (*GormUserRepository)(nil)

// GormUserRepository stores shop accounts. Usernames match exactly and
// emails case-insensitively; both are trimmed first.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

const (
	userByID       = "id = ?"
	userByUsername = "username = ?"
	userByEmail    = "LOWER(email) = ?"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts user; a taken username or email is shared.ErrAlreadyExists
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	return translate(r.db.WithContext(ctx).Create(models.UserModelFromDomain(user)).Error)
}

// Update saves user under optimistic locking and advances its version
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	row := models.UserModelFromDomain(user)
	if err := saveVersioned(ctx, r.db, row, row.ID, &row.Version); err != nil {
		return err
	}
	user.Version = row.Version
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return r.first(ctx, userByID, id)
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	return r.first(ctx, userByUsername, strings.TrimSpace(username))
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	return r.first(ctx, userByEmail, normalizeEmail(email))
}

func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, userByUsername, strings.TrimSpace(username))
}

func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, userByEmail, normalizeEmail(email))
}

func (r *GormUserRepository) first(ctx context.Context, cond string, arg any) (*identity.User, error) {
	var row models.UserModel
	if err := r.db.WithContext(ctx).Where(cond, arg).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	return row.ToDomain(), nil
}

func (r *GormUserRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var found int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where(cond, arg).Limit(1).Count(&found).Error
	return found > 0, err
}
