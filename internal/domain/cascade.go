package domain

import (
	"context"
	"time"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/xcontext"
)

// ImageReleaser drops the storage references held by images embedded
// in a post or comment body. Called while the owning row still exists.
type ImageReleaser interface {
	Release(ctx context.Context, content string) error
}

// Cascade removes a post or a comment subtree together with everything
// hanging off it. Hard rows (reactions, subscriptions, notifications,
// votes, change logs) are deleted; ledger entries are tombstoned and
// detached so the point audit trail survives. The caller runs it inside
// a transaction and recalculates the returned users afterwards.
type Cascade struct {
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	pointHistoryRepo repository.PointHistoryRepository
	reactionRepo     repository.ReactionRepository
	subscriptionRepo repository.SubscriptionRepository
	notificationRepo repository.NotificationRepository
	pollVoteRepo     repository.PollVoteRepository
	changeLogRepo    repository.PostChangeLogRepository

	imageReleaser ImageReleaser
}

func NewCascade(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	pointHistoryRepo repository.PointHistoryRepository,
	reactionRepo repository.ReactionRepository,
	subscriptionRepo repository.SubscriptionRepository,
	notificationRepo repository.NotificationRepository,
	pollVoteRepo repository.PollVoteRepository,
	changeLogRepo repository.PostChangeLogRepository,
	imageReleaser ImageReleaser,
) *Cascade {
	return &Cascade{
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		pointHistoryRepo: pointHistoryRepo,
		reactionRepo:     reactionRepo,
		subscriptionRepo: subscriptionRepo,
		notificationRepo: notificationRepo,
		pollVoteRepo:     pollVoteRepo,
		changeLogRepo:    changeLogRepo,
		imageReleaser:    imageReleaser,
	}
}

// DeletePost removes the post and its whole comment forest. It returns
// the IDs of users whose ledger entries were tombstoned.
func (c *Cascade) DeletePost(ctx context.Context, post *entity.Post) ([]string, error) {
	now := time.Now()
	affected := map[string]bool{}

	roots, err := c.commentRepo.GetRootsByPost(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get root comments: %v", err)
		return nil, err
	}

	for i := range roots {
		if err := c.deleteCommentTree(ctx, &roots[i], now, affected); err != nil {
			return nil, err
		}
	}

	if err := c.tombstonePostLedger(ctx, post.ID, now, affected); err != nil {
		return nil, err
	}

	if err := c.reactionRepo.DeleteByPost(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete post reactions: %v", err)
		return nil, err
	}

	if err := c.subscriptionRepo.DeleteByPost(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete post subscriptions: %v", err)
		return nil, err
	}

	if err := c.notificationRepo.DeleteByPost(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete post notifications: %v", err)
		return nil, err
	}

	if err := c.pollVoteRepo.DeleteByPost(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete poll votes: %v", err)
		return nil, err
	}

	if err := c.changeLogRepo.DeleteByPost(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete change logs: %v", err)
		return nil, err
	}

	if err := c.postRepo.DeleteParticipants(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete participants: %v", err)
		return nil, err
	}

	if err := c.releaseImages(ctx, post.Content); err != nil {
		return nil, err
	}

	if err := c.postRepo.Delete(ctx, post.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete post: %v", err)
		return nil, err
	}

	return keys(affected), nil
}

// DeleteComment removes the comment and its reply subtree, returning
// the IDs of users whose ledger entries were tombstoned.
func (c *Cascade) DeleteComment(ctx context.Context, comment *entity.Comment) ([]string, error) {
	affected := map[string]bool{}
	if err := c.deleteCommentTree(ctx, comment, time.Now(), affected); err != nil {
		return nil, err
	}

	return keys(affected), nil
}

// deleteCommentTree removes replies depth-first so no reply ever
// outlives its parent.
func (c *Cascade) deleteCommentTree(
	ctx context.Context, comment *entity.Comment, at time.Time, affected map[string]bool,
) error {
	replies, err := c.commentRepo.GetReplies(ctx, comment.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get replies: %v", err)
		return err
	}

	for i := range replies {
		if err := c.deleteCommentTree(ctx, &replies[i], at, affected); err != nil {
			return err
		}
	}

	histories, err := c.pointHistoryRepo.GetActiveByComment(ctx, comment.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get comment point history: %v", err)
		return err
	}

	if len(histories) > 0 {
		ids := make([]string, 0, len(histories))
		for _, h := range histories {
			ids = append(ids, h.ID)
			affected[h.UserID] = true
		}

		if err := c.pointHistoryRepo.Tombstone(ctx, ids, at); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot tombstone comment point history: %v", err)
			return err
		}
	}

	if err := c.reactionRepo.DeleteByComment(ctx, comment.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete comment reactions: %v", err)
		return err
	}

	if err := c.subscriptionRepo.DeleteByComment(ctx, comment.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete comment subscriptions: %v", err)
		return err
	}

	if err := c.notificationRepo.DeleteByComment(ctx, comment.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete comment notifications: %v", err)
		return err
	}

	if err := c.releaseImages(ctx, comment.Content); err != nil {
		return err
	}

	if err := c.commentRepo.Delete(ctx, comment.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete comment: %v", err)
		return err
	}

	return nil
}

// releaseImages must run while the owning row still exists, so a failed
// release aborts the cascade instead of leaking references.
func (c *Cascade) releaseImages(ctx context.Context, content string) error {
	if content == "" {
		return nil
	}

	if err := c.imageReleaser.Release(ctx, content); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot release image references: %v", err)
		return err
	}

	return nil
}

func (c *Cascade) tombstonePostLedger(
	ctx context.Context, postID string, at time.Time, affected map[string]bool,
) error {
	histories, err := c.pointHistoryRepo.GetActiveByPost(ctx, postID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get post point history: %v", err)
		return err
	}

	if len(histories) == 0 {
		return nil
	}

	ids := make([]string, 0, len(histories))
	for _, h := range histories {
		ids = append(ids, h.ID)
		affected[h.UserID] = true
	}

	if err := c.pointHistoryRepo.Tombstone(ctx, ids, at); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot tombstone post point history: %v", err)
		return err
	}

	return nil
}

func keys(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for k := range set {
		result = append(result, k)
	}

	return result
}
