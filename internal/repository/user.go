package repository

import (
	"context"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, userID string) (*entity.User, error)
	GetByIDs(ctx context.Context, userIDs []string) ([]entity.User, error)
	UpdatePoints(ctx context.Context, userID string, points int) error
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return xcontext.DB(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, userIDs []string) ([]entity.User, error) {
	var result []entity.User
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", userIDs).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) UpdatePoints(ctx context.Context, userID string, points int) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", userID).
		Update("points", points).Error
}
