package repository

import (
	"context"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, categoryID string) (*entity.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type categoryRepository struct{}

func NewCategoryRepository() *categoryRepository {
	return &categoryRepository{}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return xcontext.DB(ctx).Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, categoryID string) (*entity.Category, error) {
	var result entity.Category
	if err := xcontext.DB(ctx).Take(&result, "id=?", categoryID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *categoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Category{}).
		Where("LOWER(name)=LOWER(?)", name).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
