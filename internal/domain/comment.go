package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/openisle/backend/internal/domain/notification"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/model"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/errorx"
	"github.com/openisle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const commentPointReward = 1

type CommentDomain interface {
	AddComment(ctx context.Context, req *model.AddCommentRequest) (*model.AddCommentResponse, error)
	AddReply(ctx context.Context, req *model.AddReplyRequest) (*model.AddReplyResponse, error)
	DeleteComment(ctx context.Context, req *model.DeleteCommentRequest) (*model.DeleteCommentResponse, error)
}

type commentDomain struct {
	commentRepo      repository.CommentRepository
	postRepo         repository.PostRepository
	userRepo         repository.UserRepository
	subscriptionRepo repository.SubscriptionRepository

	cascade     *Cascade
	pointDomain PointDomain
	fanout      *notification.Fanout
}

func NewCommentDomain(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	subscriptionRepo repository.SubscriptionRepository,
	cascade *Cascade,
	pointDomain PointDomain,
	fanout *notification.Fanout,
) *commentDomain {
	return &commentDomain{
		commentRepo:      commentRepo,
		postRepo:         postRepo,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		cascade:          cascade,
		pointDomain:      pointDomain,
		fanout:           fanout,
	}
}

func (d *commentDomain) AddComment(
	ctx context.Context, req *model.AddCommentRequest,
) (*model.AddCommentResponse, error) {
	if req.Content == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty comment")
	}

	userID := xcontext.RequestUserID(ctx)
	post, err := d.postRepo.GetByID(ctx, req.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found post")
		}

		xcontext.Logger(ctx).Errorf("Cannot get post: %v", err)
		return nil, errorx.Unknown
	}

	if post.Closed {
		return nil, errorx.New(errorx.Unavailable, "Post was closed")
	}

	if err := d.checkCommentRate(ctx, userID); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		Base:     entity.Base{ID: uuid.NewString()},
		PostID:   post.ID,
		AuthorID: userID,
		Content:  req.Content,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.createComment(ctx, post, comment); err != nil {
		return nil, err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	subscriberIDs, err := d.subscriptionRepo.GetPostSubscriberIDs(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get post subscribers: %v", err)
	} else {
		d.fanout.CommentCreated(ctx, post, comment, subscriberIDs)
	}

	return &model.AddCommentResponse{Comment: convertComment(comment)}, nil
}

func (d *commentDomain) AddReply(
	ctx context.Context, req *model.AddReplyRequest,
) (*model.AddReplyResponse, error) {
	if req.Content == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty comment")
	}

	userID := xcontext.RequestUserID(ctx)
	parent, err := d.commentRepo.GetByID(ctx, req.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found comment")
		}

		xcontext.Logger(ctx).Errorf("Cannot get comment: %v", err)
		return nil, errorx.Unknown
	}

	post, err := d.postRepo.GetByID(ctx, parent.PostID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get post of comment: %v", err)
		return nil, errorx.Unknown
	}

	if post.Closed {
		return nil, errorx.New(errorx.Unavailable, "Post was closed")
	}

	if err := d.checkCommentRate(ctx, userID); err != nil {
		return nil, err
	}

	reply := &entity.Comment{
		Base:     entity.Base{ID: uuid.NewString()},
		PostID:   post.ID,
		AuthorID: userID,
		ParentID: sql.NullString{String: parent.ID, Valid: true},
		Content:  req.Content,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.createComment(ctx, post, reply); err != nil {
		return nil, err
	}

	if err := d.subscriptionRepo.SubscribeComment(ctx, parent.ID, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot subscribe comment: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	subscriberIDs, err := d.subscriptionRepo.GetCommentSubscriberIDs(ctx, parent.ID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get comment subscribers: %v", err)
	} else {
		d.fanout.ReplyCreated(ctx, post, parent, reply, subscriberIDs)
	}

	return &model.AddReplyResponse{Comment: convertComment(reply)}, nil
}

func (d *commentDomain) DeleteComment(
	ctx context.Context, req *model.DeleteCommentRequest,
) (*model.DeleteCommentResponse, error) {
	comment, err := d.commentRepo.GetByID(ctx, req.CommentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found comment")
		}

		xcontext.Logger(ctx).Errorf("Cannot get comment: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.checkCanModify(ctx, comment.AuthorID); err != nil {
		return nil, err
	}

	post, err := d.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get post of comment: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	affectedUserIDs, err := d.cascade.DeleteComment(ctx, comment)
	if err != nil {
		return nil, errorx.Unknown
	}

	for _, affectedID := range affectedUserIDs {
		if err := d.pointDomain.Recalculate(ctx, affectedID); err != nil {
			return nil, errorx.Unknown
		}
	}

	if err := d.refreshPostCommentStats(ctx, post); err != nil {
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)
	xcontext.Logger(ctx).Infof("Deleted comment %s with %d affected users", comment.ID, len(affectedUserIDs))

	return &model.DeleteCommentResponse{}, nil
}

// createComment persists the comment, keeps the author subscribed to
// the post, refreshes the derived stats, and rewards the author. Must
// run inside a transaction.
func (d *commentDomain) createComment(
	ctx context.Context, post *entity.Post, comment *entity.Comment,
) error {
	if err := d.commentRepo.Create(ctx, comment); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create comment: %v", err)
		return errorx.Unknown
	}

	if err := d.subscriptionRepo.SubscribePost(ctx, post.ID, comment.AuthorID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot subscribe post: %v", err)
		return errorx.Unknown
	}

	if err := d.refreshPostCommentStats(ctx, post); err != nil {
		return errorx.Unknown
	}

	err := d.pointDomain.Grant(
		ctx, comment.AuthorID, commentPointReward, "comment", post.ID, comment.ID)
	if err != nil {
		return errorx.Unknown
	}

	return nil
}

// refreshPostCommentStats recomputes the comment count and the last
// reply time from scratch. A post with no comments falls back to its
// own creation time.
func (d *commentDomain) refreshPostCommentStats(ctx context.Context, post *entity.Post) error {
	count, err := d.commentRepo.CountByPost(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count comments: %v", err)
		return err
	}

	lastReplyAt, err := d.commentRepo.LastCommentTime(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get last comment time: %v", err)
		return err
	}

	if lastReplyAt == nil {
		lastReplyAt = &post.CreatedAt
	}

	if err := d.postRepo.UpdateCommentStats(ctx, post.ID, count, *lastReplyAt); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update comment stats: %v", err)
		return err
	}

	return nil
}

func (d *commentDomain) checkCommentRate(ctx context.Context, userID string) error {
	limit := xcontext.Configs(ctx).Post.CommentLimitPerMinute
	if limit <= 0 {
		return nil
	}

	count, err := d.commentRepo.CountByAuthorAfter(ctx, userID, time.Now().Add(-time.Minute))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count recent comments: %v", err)
		return errorx.Unknown
	}

	if count >= int64(limit) {
		return errorx.New(errorx.TooManyRequests, "You are commenting too fast")
	}

	return nil
}

func (d *commentDomain) checkCanModify(ctx context.Context, authorID string) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == authorID {
		return nil
	}

	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return errorx.Unknown
	}

	if user.Role != entity.RoleAdmin {
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}

func convertComment(comment *entity.Comment) model.Comment {
	return model.Comment{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		ParentID:  comment.ParentID.String,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}
