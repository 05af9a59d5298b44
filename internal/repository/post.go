package repository

import (
	"context"
	"time"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	GetByID(ctx context.Context, postID string) (*entity.Post, error)
	Save(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, postID string) error

	UpdateCommentStats(ctx context.Context, postID string, count int64, lastReplyAt time.Time) error
	UpdateVotes(ctx context.Context, postID string, votes []int) error
	SetPinnedAt(ctx context.Context, postID string, pinnedAt *time.Time) error
	SetClosed(ctx context.Context, postID string, closed bool) error

	// Participants
	AddParticipant(ctx context.Context, postID, userID string) (bool, error)
	GetParticipantIDs(ctx context.Context, postID string) ([]string, error)
	HasParticipant(ctx context.Context, postID, userID string) (bool, error)
	DeleteParticipants(ctx context.Context, postID string) error

	// Outcome writes. Each update is guarded on the not-yet-resolved
	// state; losing a race returns gorm.ErrRecordNotFound.
	SetLotteryWinners(ctx context.Context, postID string, winners []string) error
	AnnouncePollResult(ctx context.Context, postID string) error
	ResolveProposal(ctx context.Context, postID string, status entity.ProposalStatus, rejectReason, snapshot string) error

	GetUnresolvedTimeBound(ctx context.Context) ([]entity.Post, error)
	ExistsProposalName(ctx context.Context, name string) (bool, error)
}

type postRepository struct{}

func NewPostRepository() *postRepository {
	return &postRepository{}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return xcontext.DB(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, postID string) (*entity.Post, error) {
	var result entity.Post
	if err := xcontext.DB(ctx).Take(&result, "id=?", postID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *postRepository) Save(ctx context.Context, post *entity.Post) error {
	return xcontext.DB(ctx).Save(post).Error
}

func (r *postRepository) Delete(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).Delete(&entity.Post{}, "id=?", postID).Error
}

func (r *postRepository) UpdateCommentStats(
	ctx context.Context, postID string, count int64, lastReplyAt time.Time,
) error {
	return xcontext.DB(ctx).Model(&entity.Post{}).
		Where("id=?", postID).
		Updates(map[string]any{
			"comment_count": count,
			"last_reply_at": lastReplyAt,
		}).Error
}

// UpdateVotes refreshes the denormalized vote snapshot. The vote rows
// remain the source of truth.
func (r *postRepository) UpdateVotes(ctx context.Context, postID string, votes []int) error {
	return xcontext.DB(ctx).Model(&entity.Post{}).
		Where("id=?", postID).
		Update("votes", entity.Array[int](votes)).Error
}

func (r *postRepository) SetPinnedAt(ctx context.Context, postID string, pinnedAt *time.Time) error {
	return xcontext.DB(ctx).Model(&entity.Post{}).
		Where("id=?", postID).
		Update("pinned_at", pinnedAt).Error
}

func (r *postRepository) SetClosed(ctx context.Context, postID string, closed bool) error {
	return xcontext.DB(ctx).Model(&entity.Post{}).
		Where("id=?", postID).
		Update("closed", closed).Error
}

// AddParticipant returns false if the user already engaged with the
// post before.
func (r *postRepository) AddParticipant(ctx context.Context, postID, userID string) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.PostParticipant{PostID: postID, UserID: userID})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *postRepository) GetParticipantIDs(ctx context.Context, postID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).Model(&entity.PostParticipant{}).
		Where("post_id=?", postID).
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *postRepository) HasParticipant(ctx context.Context, postID, userID string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.PostParticipant{}).
		Where("post_id=? AND user_id=?", postID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *postRepository) DeleteParticipants(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).
		Delete(&entity.PostParticipant{}, "post_id=?", postID).Error
}

func (r *postRepository) SetLotteryWinners(
	ctx context.Context, postID string, winners []string,
) error {
	// A nil array is stored as the JSON literal "null".
	tx := xcontext.DB(ctx).Model(&entity.Post{}).
		Where("id=? AND type=? AND (winners IS NULL OR winners IN (?))",
			postID, entity.PostLottery, []string{"", "[]", "null"}).
		Update("winners", entity.Array[string](winners))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *postRepository) AnnouncePollResult(ctx context.Context, postID string) error {
	tx := xcontext.DB(ctx).Model(&entity.Post{}).
		Where("id=? AND type=? AND result_announced=?", postID, entity.PostPoll, false).
		Update("result_announced", true)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *postRepository) ResolveProposal(
	ctx context.Context, postID string, status entity.ProposalStatus, rejectReason, snapshot string,
) error {
	tx := xcontext.DB(ctx).Model(&entity.Post{}).
		Where("id=? AND type=? AND proposal_status=?",
			postID, entity.PostProposal, entity.ProposalPending).
		Updates(map[string]any{
			"proposal_status": status,
			"reject_reason":   rejectReason,
			"result_snapshot": snapshot,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *postRepository) GetUnresolvedTimeBound(ctx context.Context) ([]entity.Post, error) {
	var result []entity.Post
	err := xcontext.DB(ctx).
		Where("end_time IS NOT NULL").
		Where(
			"(type=? AND (winners IS NULL OR winners IN (?)))"+
				" OR (type=? AND result_announced=?)"+
				" OR (type=? AND proposal_status=?)",
			entity.PostLottery, []string{"", "[]", "null"},
			entity.PostPoll, false,
			entity.PostProposal, entity.ProposalPending,
		).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *postRepository) ExistsProposalName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Post{}).
		Where("type=? AND LOWER(proposed_name)=LOWER(?)", entity.PostProposal, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
