package repository

import (
	"context"
	"errors"

	"sweetshop/internal/domain/model"
	repo "sweetshop/internal/repository"

	"gorm.io/gorm"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserGormRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	return r.findOne(ctx, "id = ?", userID)
}

func (r *UserGormRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserGormRepository) findOne(ctx context.Context, cond string, arg string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
