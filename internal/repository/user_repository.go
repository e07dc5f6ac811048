package repository

import (
	"context"
	"errors"

	"todoapp/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	EnsureRoles(ctx context.Context, names ...string) error
	AddRole(ctx context.Context, userID, role string) error
}

var _ UserRepositoryInterface = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user together with its role memberships. Roles must
// already exist.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Roles.*").Create(user).Error
}

// FindByEmail returns nil, nil when no user has the address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Preload("Roles").Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureRoles creates any missing roles.
func (r *UserRepository) EnsureRoles(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	roles := make([]model.Role, len(names))
	for i, n := range names {
		roles[i] = model.Role{Name: n}
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error
}

// AddRole grants role to the user; granting a held role is a no-op.
func (r *UserRepository) AddRole(ctx context.Context, userID, role string) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO user_roles (user_id, role_name) VALUES (?, ?) ON CONFLICT DO NOTHING",
		userID, role,
	).Error
}
