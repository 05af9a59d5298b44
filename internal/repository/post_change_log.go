package repository

import (
	"context"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
)

type PostChangeLogRepository interface {
	Create(ctx context.Context, log *entity.PostChangeLog) error
	DeleteByPost(ctx context.Context, postID string) error
}

type postChangeLogRepository struct{}

func NewPostChangeLogRepository() *postChangeLogRepository {
	return &postChangeLogRepository{}
}

func (r *postChangeLogRepository) Create(ctx context.Context, log *entity.PostChangeLog) error {
	return xcontext.DB(ctx).Create(log).Error
}

func (r *postChangeLogRepository) DeleteByPost(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).Delete(&entity.PostChangeLog{}, "post_id=?", postID).Error
}
