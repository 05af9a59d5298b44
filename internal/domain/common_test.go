package domain

import (
	"context"
	"testing"
	"time"

	"github.com/openisle/backend/internal/domain/finalizer"
	"github.com/openisle/backend/internal/domain/notification"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/errorx"
	"github.com/openisle/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type testDomains struct {
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	userRepo         repository.UserRepository
	pollVoteRepo     repository.PollVoteRepository
	pointHistoryRepo repository.PointHistoryRepository
	reactionRepo     repository.ReactionRepository
	subscriptionRepo repository.SubscriptionRepository
	categoryRepo     repository.CategoryRepository

	clock         *testutil.MockClock
	redisClient   *testutil.MockRedisClient
	pushSender    *testutil.MockPushSender
	emailSender   *testutil.MockEmailSender
	imageReleaser *testutil.MockImageReleaser
	registry      *finalizer.Registry

	pointDomain        PointDomain
	postDomain         PostDomain
	commentDomain      CommentDomain
	notificationDomain NotificationDomain
}

func newTestDomains(ctx context.Context) *testDomains {
	d := &testDomains{
		postRepo:         repository.NewPostRepository(),
		commentRepo:      repository.NewCommentRepository(),
		userRepo:         repository.NewUserRepository(),
		pollVoteRepo:     repository.NewPollVoteRepository(),
		pointHistoryRepo: repository.NewPointHistoryRepository(),
		reactionRepo:     repository.NewReactionRepository(),
		subscriptionRepo: repository.NewSubscriptionRepository(),
		categoryRepo:     repository.NewCategoryRepository(),
		clock:            testutil.NewMockClock(time.Now()),
		redisClient:      &testutil.MockRedisClient{},
		pushSender:       &testutil.MockPushSender{},
		emailSender:      &testutil.MockEmailSender{},
		imageReleaser:    &testutil.MockImageReleaser{},
	}

	notificationRepo := repository.NewNotificationRepository()
	changeLogRepo := repository.NewPostChangeLogRepository()

	fanout := notification.NewFanout(notificationRepo, d.userRepo, d.emailSender, d.pushSender)
	resolver := finalizer.NewResolver(
		d.postRepo, d.pollVoteRepo, d.categoryRepo, changeLogRepo, fanout)
	d.registry = finalizer.NewRegistry(ctx, d.clock, resolver, d.postRepo)

	cascade := NewCascade(
		d.postRepo, d.commentRepo, d.pointHistoryRepo, d.reactionRepo,
		d.subscriptionRepo, notificationRepo, d.pollVoteRepo, changeLogRepo,
		d.imageReleaser)

	d.pointDomain = NewPointDomain(d.pointHistoryRepo, d.userRepo)
	d.postDomain = NewPostDomain(
		d.postRepo, d.categoryRepo, d.userRepo, d.pollVoteRepo,
		d.subscriptionRepo, changeLogRepo, cascade, d.pointDomain,
		d.registry, fanout, d.clock, d.redisClient)
	d.commentDomain = NewCommentDomain(
		d.commentRepo, d.postRepo, d.userRepo, d.subscriptionRepo,
		cascade, d.pointDomain, fanout)
	d.notificationDomain = NewNotificationDomain(notificationRepo)

	return d
}

func requireErrorCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, code, errx.Code)
}
