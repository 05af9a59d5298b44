package repository

import (
	"context"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByUser(ctx context.Context, userID string) ([]entity.Notification, error)
	DeleteByPost(ctx context.Context, postID string) error
	DeleteByComment(ctx context.Context, commentID string) error
}

type notificationRepository struct{}

func NewNotificationRepository() *notificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return xcontext.DB(ctx).Create(notification).Error
}

func (r *notificationRepository) GetByUser(ctx context.Context, userID string) ([]entity.Notification, error) {
	var result []entity.Notification
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *notificationRepository) DeleteByPost(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).Delete(&entity.Notification{}, "post_id=?", postID).Error
}

func (r *notificationRepository) DeleteByComment(ctx context.Context, commentID string) error {
	return xcontext.DB(ctx).Delete(&entity.Notification{}, "comment_id=?", commentID).Error
}
