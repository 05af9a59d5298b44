package finalizer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openisle/backend/internal/domain/notification"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestResolver() (*Resolver, *testutil.MockPushSender) {
	pushSender := &testutil.MockPushSender{}
	fanout := notification.NewFanout(
		repository.NewNotificationRepository(),
		repository.NewUserRepository(),
		&testutil.MockEmailSender{},
		pushSender,
	)

	resolver := NewResolver(
		repository.NewPostRepository(),
		repository.NewPollVoteRepository(),
		repository.NewCategoryRepository(),
		repository.NewPostChangeLogRepository(),
		fanout,
	)

	return resolver, pushSender
}

func createLottery(
	t *testing.T, ctx context.Context, prizeCount int, participantIDs []string,
) *entity.Post {
	postRepo := repository.NewPostRepository()
	userRepo := repository.NewUserRepository()

	endTime := time.Now().Add(-time.Minute)
	post := &entity.Post{
		Base:       entity.Base{ID: uuid.NewString()},
		AuthorID:   testutil.User1.ID,
		CategoryID: testutil.Category1.ID,
		Type:       entity.PostLottery,
		Title:      "lottery",
		Content:    "prize inside",
		PrizeCount: prizeCount,
		EndTime:    &endTime,
	}
	require.NoError(t, postRepo.Create(ctx, post))

	for _, userID := range participantIDs {
		require.NoError(t, userRepo.Create(ctx, &entity.User{
			Base: entity.Base{ID: userID},
			Name: userID,
		}))

		added, err := postRepo.AddParticipant(ctx, post.ID, userID)
		require.NoError(t, err)
		require.True(t, added)
	}

	return post
}

func Test_resolver_lottery_picks_winners_from_participants(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	postRepo := repository.NewPostRepository()

	participantIDs := []string{"p1", "p2", "p3", "p4", "p5"}
	post := createLottery(t, ctx, 2, participantIDs)

	require.NoError(t, resolver.Resolve(ctx, post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Winners, 2)
	require.True(t, got.Resolved())

	members := map[string]bool{}
	for _, id := range participantIDs {
		members[id] = true
	}

	seen := map[string]bool{}
	for _, winner := range got.Winners {
		require.True(t, members[winner])
		require.False(t, seen[winner])
		seen[winner] = true
	}
}

func Test_resolver_lottery_with_fewer_participants_than_prizes(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	postRepo := repository.NewPostRepository()

	post := createLottery(t, ctx, 10, []string{"p1", "p2"})

	require.NoError(t, resolver.Resolve(ctx, post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Winners, 2)
}

func Test_resolver_lottery_without_participants_never_announces(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, pushSender := newTestResolver()
	postRepo := repository.NewPostRepository()

	post := createLottery(t, ctx, 3, nil)

	require.NoError(t, resolver.Resolve(ctx, post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Empty(t, got.Winners)
	require.False(t, got.Resolved())
	require.Empty(t, pushSender.Pushed)
}

func Test_resolver_double_resolve_is_noop(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, pushSender := newTestResolver()
	postRepo := repository.NewPostRepository()

	post := createLottery(t, ctx, 2, []string{"p1", "p2", "p3"})

	require.NoError(t, resolver.Resolve(ctx, post.ID))
	first, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	pushedBefore := len(pushSender.Pushed)

	require.NoError(t, resolver.Resolve(ctx, post.ID))
	second, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)

	require.Equal(t, first.Winners, second.Winners)
	require.Len(t, pushSender.Pushed, pushedBefore)
}

func createProposal(
	t *testing.T, ctx context.Context, name string, participants, approveVotes int,
) *entity.Post {
	postRepo := repository.NewPostRepository()
	pollVoteRepo := repository.NewPollVoteRepository()

	endTime := time.Now().Add(-time.Minute)
	post := &entity.Post{
		Base:             entity.Base{ID: uuid.NewString()},
		AuthorID:         testutil.User1.ID,
		CategoryID:       testutil.Category1.ID,
		Type:             entity.PostProposal,
		Title:            "new category",
		Content:          "please",
		EndTime:          &endTime,
		ProposedName:     name,
		Quorum:           10,
		ApproveThreshold: 60,
		ProposalStatus:   entity.ProposalPending,
		Options:          []string{"approve", "reject"},
		Votes:            []int{0, 0},
	}
	require.NoError(t, postRepo.Create(ctx, post))

	for i := 0; i < participants; i++ {
		userID := uuid.NewString()
		added, err := postRepo.AddParticipant(ctx, post.ID, userID)
		require.NoError(t, err)
		require.True(t, added)

		optionIndex := 1
		if i < approveVotes {
			optionIndex = 0
		}

		require.NoError(t, pollVoteRepo.Create(ctx, &entity.PollVote{
			Base:        entity.Base{ID: uuid.NewString()},
			PostID:      post.ID,
			UserID:      userID,
			OptionIndex: optionIndex,
		}))
	}

	return post
}

func Test_resolver_proposal_approved(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	postRepo := repository.NewPostRepository()
	categoryRepo := repository.NewCategoryRepository()

	post := createProposal(t, ctx, "Gardening", 20, 13)

	require.NoError(t, resolver.Resolve(ctx, post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ProposalApproved, got.ProposalStatus)
	require.Empty(t, got.RejectReason)
	require.Equal(t, "approveVotes=13, totalParticipants=20, approvePercent=65", got.ResultSnapshot)

	existed, err := categoryRepo.ExistsByName(ctx, "Gardening")
	require.NoError(t, err)
	require.True(t, existed)
}

func Test_resolver_proposal_rejected_below_quorum(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	postRepo := repository.NewPostRepository()
	categoryRepo := repository.NewCategoryRepository()

	post := createProposal(t, ctx, "Cooking", 5, 5)

	require.NoError(t, resolver.Resolve(ctx, post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ProposalRejected, got.ProposalStatus)
	require.Equal(t, "Quorum not met", got.RejectReason)

	existed, err := categoryRepo.ExistsByName(ctx, "Cooking")
	require.NoError(t, err)
	require.False(t, existed)
}

func Test_resolver_proposal_rejected_below_threshold(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	postRepo := repository.NewPostRepository()

	post := createProposal(t, ctx, "Fishing", 20, 10)

	require.NoError(t, resolver.Resolve(ctx, post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ProposalRejected, got.ProposalStatus)
	require.Equal(t, "Approval below threshold", got.RejectReason)
	require.Equal(t, "approveVotes=10, totalParticipants=20, approvePercent=50", got.ResultSnapshot)
}

func Test_resolver_proposal_rejected_for_both_reasons(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	postRepo := repository.NewPostRepository()

	post := createProposal(t, ctx, "Hiking", 3, 1)

	require.NoError(t, resolver.Resolve(ctx, post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ProposalRejected, got.ProposalStatus)
	require.Equal(t, "Quorum not met and approval below threshold", got.RejectReason)
}

func Test_resolver_poll_announces_and_notifies_participants(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, pushSender := newTestResolver()
	postRepo := repository.NewPostRepository()
	pollVoteRepo := repository.NewPollVoteRepository()

	endTime := time.Now().Add(-time.Minute)
	post := &entity.Post{
		Base:       entity.Base{ID: uuid.NewString()},
		AuthorID:   testutil.User1.ID,
		CategoryID: testutil.Category1.ID,
		Type:       entity.PostPoll,
		Title:      "favorite season",
		Content:    "pick one",
		EndTime:    &endTime,
		Options:    []string{"summer", "winter"},
		Votes:      []int{0, 0},
	}
	require.NoError(t, postRepo.Create(ctx, post))

	for i, userID := range []string{"v1", "v2", "v3"} {
		added, err := postRepo.AddParticipant(ctx, post.ID, userID)
		require.NoError(t, err)
		require.True(t, added)

		require.NoError(t, pollVoteRepo.Create(ctx, &entity.PollVote{
			Base:        entity.Base{ID: uuid.NewString()},
			PostID:      post.ID,
			UserID:      userID,
			OptionIndex: i % 2,
		}))
	}

	require.NoError(t, resolver.Resolve(ctx, post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.True(t, got.ResultAnnounced)

	// The owner and the three voters each get one event.
	require.Len(t, pushSender.Pushed, 4)
}
