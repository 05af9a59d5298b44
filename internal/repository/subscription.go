package repository

import (
	"context"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	SubscribePost(ctx context.Context, postID, userID string) error
	GetPostSubscriberIDs(ctx context.Context, postID string) ([]string, error)
	DeleteByPost(ctx context.Context, postID string) error

	SubscribeComment(ctx context.Context, commentID, userID string) error
	GetCommentSubscriberIDs(ctx context.Context, commentID string) ([]string, error)
	DeleteByComment(ctx context.Context, commentID string) error
}

type subscriptionRepository struct{}

func NewSubscriptionRepository() *subscriptionRepository {
	return &subscriptionRepository{}
}

func (r *subscriptionRepository) SubscribePost(ctx context.Context, postID, userID string) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.PostSubscription{PostID: postID, UserID: userID}).Error
}

func (r *subscriptionRepository) GetPostSubscriberIDs(ctx context.Context, postID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.PostSubscription{}).
		Where("post_id=?", postID).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *subscriptionRepository) DeleteByPost(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).Delete(&entity.PostSubscription{}, "post_id=?", postID).Error
}

func (r *subscriptionRepository) SubscribeComment(ctx context.Context, commentID, userID string) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.CommentSubscription{CommentID: commentID, UserID: userID}).Error
}

func (r *subscriptionRepository) GetCommentSubscriberIDs(ctx context.Context, commentID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.CommentSubscription{}).
		Where("comment_id=?", commentID).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *subscriptionRepository) DeleteByComment(ctx context.Context, commentID string) error {
	return xcontext.DB(ctx).Delete(&entity.CommentSubscription{}, "comment_id=?", commentID).Error
}
