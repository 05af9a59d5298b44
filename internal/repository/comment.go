package repository

import (
	"context"
	"errors"
	"time"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, commentID string) (*entity.Comment, error)
	Delete(ctx context.Context, commentID string) error

	GetReplies(ctx context.Context, parentID string) ([]entity.Comment, error)
	GetRootsByPost(ctx context.Context, postID string) ([]entity.Comment, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
	LastCommentTime(ctx context.Context, postID string) (*time.Time, error)
	CountByAuthorAfter(ctx context.Context, authorID string, after time.Time) (int64, error)
}

type commentRepository struct{}

func NewCommentRepository() *commentRepository {
	return &commentRepository{}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return xcontext.DB(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*entity.Comment, error) {
	var result entity.Comment
	if err := xcontext.DB(ctx).Take(&result, "id=?", commentID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID string) error {
	return xcontext.DB(ctx).Delete(&entity.Comment{}, "id=?", commentID).Error
}

func (r *commentRepository) GetReplies(ctx context.Context, parentID string) ([]entity.Comment, error) {
	var result []entity.Comment
	err := xcontext.DB(ctx).Where("parent_id=?", parentID).
		Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *commentRepository) GetRootsByPost(ctx context.Context, postID string) ([]entity.Comment, error) {
	var result []entity.Comment
	err := xcontext.DB(ctx).Where("post_id=? AND parent_id IS NULL", postID).
		Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Comment{}).
		Where("post_id=?", postID).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// LastCommentTime returns nil when the post has no comments.
func (r *commentRepository) LastCommentTime(ctx context.Context, postID string) (*time.Time, error) {
	var result entity.Comment
	err := xcontext.DB(ctx).Where("post_id=?", postID).
		Order("created_at DESC").Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return &result.CreatedAt, nil
}

func (r *commentRepository) CountByAuthorAfter(
	ctx context.Context, authorID string, after time.Time,
) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Comment{}).
		Where("author_id=? AND created_at > ?", authorID, after).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
