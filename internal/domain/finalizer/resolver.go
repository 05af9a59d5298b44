package finalizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/openisle/backend/internal/domain/notification"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/crypto"
	"github.com/openisle/backend/pkg/xcontext"
	"github.com/pkg/math"
	"gorm.io/gorm"
)

// Resolver freezes the outcome of a time-bound post. All outcome writes
// go through guarded updates, so concurrent resolutions of the same post
// commit exactly one result and the losers become no-ops.
type Resolver struct {
	postRepo      repository.PostRepository
	pollVoteRepo  repository.PollVoteRepository
	categoryRepo  repository.CategoryRepository
	changeLogRepo repository.PostChangeLogRepository

	fanout *notification.Fanout
}

func NewResolver(
	postRepo repository.PostRepository,
	pollVoteRepo repository.PollVoteRepository,
	categoryRepo repository.CategoryRepository,
	changeLogRepo repository.PostChangeLogRepository,
	fanout *notification.Fanout,
) *Resolver {
	return &Resolver{
		postRepo:      postRepo,
		pollVoteRepo:  pollVoteRepo,
		categoryRepo:  categoryRepo,
		changeLogRepo: changeLogRepo,
		fanout:        fanout,
	}
}

// Resolve loads the post and freezes its outcome. Resolving an already
// resolved post is a no-op. A missing post returns
// gorm.ErrRecordNotFound; the caller decides whether that matters.
func (r *Resolver) Resolve(ctx context.Context, postID string) error {
	post, err := r.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		xcontext.Logger(ctx).Errorf("Cannot get post to resolve: %v", err)
		return err
	}

	if post.Resolved() {
		return nil
	}

	switch post.Type {
	case entity.PostLottery:
		return r.resolveLottery(ctx, post)
	case entity.PostPoll:
		return r.resolvePoll(ctx, post)
	case entity.PostProposal:
		return r.resolveProposal(ctx, post)
	}

	return nil
}

func (r *Resolver) resolveLottery(ctx context.Context, post *entity.Post) error {
	participantIDs, err := r.postRepo.GetParticipantIDs(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get lottery participants: %v", err)
		return err
	}

	// A lottery nobody entered never announces a result.
	if len(participantIDs) == 0 {
		return nil
	}

	crypto.Shuffle(participantIDs)
	winners := participantIDs[:math.MinInt(post.PrizeCount, len(participantIDs))]

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := r.postRepo.SetLotteryWinners(ctx, post.ID, winners); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Another resolution or a deletion won the race.
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot set lottery winners: %v", err)
		return err
	}

	err = r.changeLogRepo.Create(ctx, &entity.PostChangeLog{
		Base:     entity.Base{ID: uuid.NewString()},
		PostID:   post.ID,
		Field:    "lottery_result",
		NewValue: strings.Join(winners, ","),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create lottery change log: %v", err)
		return err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	r.fanout.LotteryResolved(ctx, post, winners)
	return nil
}

func (r *Resolver) resolvePoll(ctx context.Context, post *entity.Post) error {
	participantIDs, err := r.postRepo.GetParticipantIDs(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get poll participants: %v", err)
		return err
	}

	counts, err := r.pollVoteRepo.CountAllOptions(ctx, post.ID, len(post.Options))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count poll votes: %v", err)
		return err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := r.postRepo.AnnouncePollResult(ctx, post.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot announce poll result: %v", err)
		return err
	}

	err = r.changeLogRepo.Create(ctx, &entity.PostChangeLog{
		Base:     entity.Base{ID: uuid.NewString()},
		PostID:   post.ID,
		Field:    "poll_result",
		NewValue: formatVotes(post.Options, counts),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create poll change log: %v", err)
		return err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	r.fanout.PollResolved(ctx, post, participantIDs)
	return nil
}

func (r *Resolver) resolveProposal(ctx context.Context, post *entity.Post) error {
	participantIDs, err := r.postRepo.GetParticipantIDs(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get proposal participants: %v", err)
		return err
	}

	// Count from the vote rows, not the denormalized snapshot on the
	// post, so a stale snapshot cannot flip the outcome.
	approveVotes, err := r.pollVoteRepo.CountByOption(ctx, post.ID, 0)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count approve votes: %v", err)
		return err
	}

	total := len(participantIDs)
	approvePercent := 0
	if total > 0 {
		approvePercent = approveVotes * 100 / total
	}

	quorumMet := total >= post.Quorum
	thresholdMet := approvePercent >= post.ApproveThreshold

	status := entity.ProposalApproved
	rejectReason := ""
	switch {
	case !quorumMet && !thresholdMet:
		status = entity.ProposalRejected
		rejectReason = "Quorum not met and approval below threshold"
	case !quorumMet:
		status = entity.ProposalRejected
		rejectReason = "Quorum not met"
	case !thresholdMet:
		status = entity.ProposalRejected
		rejectReason = "Approval below threshold"
	}

	snapshot := fmt.Sprintf("approveVotes=%d, totalParticipants=%d, approvePercent=%d",
		approveVotes, total, approvePercent)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	err = r.postRepo.ResolveProposal(ctx, post.ID, status, rejectReason, snapshot)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		xcontext.Logger(ctx).Errorf("Cannot resolve proposal: %v", err)
		return err
	}

	if status == entity.ProposalApproved {
		if err := r.createProposedCategory(ctx, post); err != nil {
			return err
		}
	}

	err = r.changeLogRepo.Create(ctx, &entity.PostChangeLog{
		Base:     entity.Base{ID: uuid.NewString()},
		PostID:   post.ID,
		Field:    "proposal_status",
		OldValue: string(entity.ProposalPending),
		NewValue: string(status),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create proposal change log: %v", err)
		return err
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	post.ProposalStatus = status
	post.RejectReason = rejectReason
	post.ResultSnapshot = snapshot
	r.fanout.ProposalResolved(ctx, post, participantIDs)
	return nil
}

func (r *Resolver) createProposedCategory(ctx context.Context, post *entity.Post) error {
	existed, err := r.categoryRepo.ExistsByName(ctx, post.ProposedName)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check category name: %v", err)
		return err
	}

	if existed {
		xcontext.Logger(ctx).Warnf(
			"Category %s already exists, skip creating for proposal %s",
			post.ProposedName, post.ID)
		return nil
	}

	err = r.categoryRepo.Create(ctx, &entity.Category{
		Base:        entity.Base{ID: uuid.NewString()},
		Name:        post.ProposedName,
		Description: post.ProposalDescription,
		Icon:        "star",
		CreatedBy:   post.AuthorID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create category of proposal: %v", err)
		return err
	}

	return nil
}

func formatVotes(options []string, votes []int) string {
	parts := make([]string, 0, len(options))
	for i, option := range options {
		count := 0
		if i < len(votes) {
			count = votes[i]
		}

		parts = append(parts, fmt.Sprintf("%s=%d", option, count))
	}

	return strings.Join(parts, ", ")
}
