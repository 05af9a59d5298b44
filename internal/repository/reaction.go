package repository

import (
	"context"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
)

type ReactionRepository interface {
	Create(ctx context.Context, reaction *entity.Reaction) error
	DeleteByPost(ctx context.Context, postID string) error
	DeleteByComment(ctx context.Context, commentID string) error
	CountByComment(ctx context.Context, commentID string) (int64, error)
}

type reactionRepository struct{}

func NewReactionRepository() *reactionRepository {
	return &reactionRepository{}
}

func (r *reactionRepository) Create(ctx context.Context, reaction *entity.Reaction) error {
	return xcontext.DB(ctx).Create(reaction).Error
}

func (r *reactionRepository) DeleteByPost(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).Delete(&entity.Reaction{}, "post_id=?", postID).Error
}

func (r *reactionRepository) DeleteByComment(ctx context.Context, commentID string) error {
	return xcontext.DB(ctx).Delete(&entity.Reaction{}, "comment_id=?", commentID).Error
}

func (r *reactionRepository) CountByComment(ctx context.Context, commentID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Reaction{}).
		Where("comment_id=?", commentID).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
