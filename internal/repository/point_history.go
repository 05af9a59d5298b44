package repository

import (
	"context"
	"time"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
)

type PointHistoryRepository interface {
	Create(ctx context.Context, history *entity.PointHistory) error
	GetActiveByPost(ctx context.Context, postID string) ([]entity.PointHistory, error)
	GetActiveByComment(ctx context.Context, commentID string) ([]entity.PointHistory, error)
	GetActiveByUser(ctx context.Context, userID string) ([]entity.PointHistory, error)

	// Tombstone logically deletes the entries and detaches their post
	// and comment links, keeping the rows for audit.
	Tombstone(ctx context.Context, ids []string, at time.Time) error

	SumActiveByUser(ctx context.Context, userID string) (int, error)
}

type pointHistoryRepository struct{}

func NewPointHistoryRepository() *pointHistoryRepository {
	return &pointHistoryRepository{}
}

func (r *pointHistoryRepository) Create(ctx context.Context, history *entity.PointHistory) error {
	return xcontext.DB(ctx).Create(history).Error
}

func (r *pointHistoryRepository) GetActiveByPost(
	ctx context.Context, postID string,
) ([]entity.PointHistory, error) {
	var result []entity.PointHistory
	err := xcontext.DB(ctx).
		Where("post_id=? AND deleted_at IS NULL", postID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pointHistoryRepository) GetActiveByComment(
	ctx context.Context, commentID string,
) ([]entity.PointHistory, error) {
	var result []entity.PointHistory
	err := xcontext.DB(ctx).
		Where("comment_id=? AND deleted_at IS NULL", commentID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pointHistoryRepository) GetActiveByUser(
	ctx context.Context, userID string,
) ([]entity.PointHistory, error) {
	var result []entity.PointHistory
	err := xcontext.DB(ctx).
		Where("user_id=? AND deleted_at IS NULL", userID).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pointHistoryRepository) Tombstone(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Model(&entity.PointHistory{}).
		Where("id IN (?) AND deleted_at IS NULL", ids).
		Updates(map[string]any{
			"deleted_at": at,
			"post_id":    nil,
			"comment_id": nil,
		}).Error
}

func (r *pointHistoryRepository) SumActiveByUser(ctx context.Context, userID string) (int, error) {
	var total int64
	err := xcontext.DB(ctx).Model(&entity.PointHistory{}).
		Where("user_id=? AND deleted_at IS NULL", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return int(total), nil
}
