package repository

import (
	"context"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/xcontext"
)

type PollVoteRepository interface {
	Create(ctx context.Context, vote *entity.PollVote) error
	CountByOption(ctx context.Context, postID string, optionIndex int) (int, error)
	CountAllOptions(ctx context.Context, postID string, numOptions int) ([]int, error)
	DeleteByPost(ctx context.Context, postID string) error
}

type pollVoteRepository struct{}

func NewPollVoteRepository() *pollVoteRepository {
	return &pollVoteRepository{}
}

func (r *pollVoteRepository) Create(ctx context.Context, vote *entity.PollVote) error {
	return xcontext.DB(ctx).Create(vote).Error
}

func (r *pollVoteRepository) CountByOption(
	ctx context.Context, postID string, optionIndex int,
) (int, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.PollVote{}).
		Where("post_id=? AND option_index=?", postID, optionIndex).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// CountAllOptions returns the vote count per option index, aligned with
// the post's options array.
func (r *pollVoteRepository) CountAllOptions(
	ctx context.Context, postID string, numOptions int,
) ([]int, error) {
	type row struct {
		OptionIndex int
		Count       int
	}

	var rows []row
	err := xcontext.DB(ctx).Model(&entity.PollVote{}).
		Select("option_index, COUNT(*) as count").
		Where("post_id=?", postID).
		Group("option_index").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]int, numOptions)
	for _, r := range rows {
		if r.OptionIndex >= 0 && r.OptionIndex < numOptions {
			counts[r.OptionIndex] = r.Count
		}
	}

	return counts, nil
}

func (r *pollVoteRepository) DeleteByPost(ctx context.Context, postID string) error {
	return xcontext.DB(ctx).Delete(&entity.PollVote{}, "post_id=?", postID).Error
}
