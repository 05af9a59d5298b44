package finalizer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_registry_arm_twice_fails(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	clock := testutil.NewMockClock(time.Now())
	registry := NewRegistry(ctx, clock, resolver, repository.NewPostRepository())

	require.NoError(t, registry.Arm("post1", clock.Now().Add(time.Hour)))
	require.Error(t, registry.Arm("post1", clock.Now().Add(time.Hour)))
	require.True(t, registry.Armed("post1"))

	registry.Cancel("post1")
	require.False(t, registry.Armed("post1"))
}

func Test_registry_schedule_or_resolve_if_due(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	clock := testutil.NewMockClock(time.Now())
	postRepo := repository.NewPostRepository()
	registry := NewRegistry(ctx, clock, resolver, postRepo)

	// Overdue post resolves synchronously.
	overdue := createLottery(t, ctx, 1, []string{"p1", "p2"})
	require.NoError(t, registry.ScheduleOrResolveIfDue(ctx, overdue))
	require.False(t, registry.Armed(overdue.ID))

	got, err := postRepo.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	require.True(t, got.Resolved())

	// Future post only arms a timer.
	future := createLottery(t, ctx, 1, []string{"p3"})
	endTime := clock.Now().Add(time.Hour)
	future.EndTime = &endTime
	require.NoError(t, postRepo.Save(ctx, future))

	require.NoError(t, registry.ScheduleOrResolveIfDue(ctx, future))
	require.True(t, registry.Armed(future.ID))

	got, err = postRepo.GetByID(ctx, future.ID)
	require.NoError(t, err)
	require.False(t, got.Resolved())

	registry.Cancel(future.ID)
}

func Test_registry_deadline_fires_timer(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	clock := testutil.NewMockClock(time.Now())
	postRepo := repository.NewPostRepository()
	registry := NewRegistry(ctx, clock, resolver, postRepo)

	post := createLottery(t, ctx, 1, []string{"p1", "p2"})

	require.NoError(t, registry.Arm(post.ID, clock.Now().Add(50*time.Millisecond)))

	require.Eventually(t, func() bool {
		got, err := postRepo.GetByID(ctx, post.ID)
		return err == nil && got.Resolved()
	}, 2*time.Second, 20*time.Millisecond)

	require.False(t, registry.Armed(post.ID))
}

func Test_registry_cancel_prevents_resolution(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	clock := testutil.NewMockClock(time.Now())
	postRepo := repository.NewPostRepository()
	registry := NewRegistry(ctx, clock, resolver, postRepo)

	post := createLottery(t, ctx, 1, []string{"p1"})

	require.NoError(t, registry.Arm(post.ID, clock.Now().Add(50*time.Millisecond)))
	registry.Cancel(post.ID)

	time.Sleep(200 * time.Millisecond)

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.False(t, got.Resolved())
}

func Test_registry_resolve_now_cancels_timer(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	clock := testutil.NewMockClock(time.Now())
	postRepo := repository.NewPostRepository()
	registry := NewRegistry(ctx, clock, resolver, postRepo)

	post := createLottery(t, ctx, 1, []string{"p1", "p2"})

	require.NoError(t, registry.Arm(post.ID, clock.Now().Add(time.Hour)))
	require.NoError(t, registry.ResolveNow(ctx, post.ID))
	require.False(t, registry.Armed(post.ID))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.True(t, got.Resolved())
}

func Test_registry_reconcile_on_startup(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	resolver, _ := newTestResolver()
	clock := testutil.NewMockClock(time.Now())
	postRepo := repository.NewPostRepository()
	registry := NewRegistry(ctx, clock, resolver, postRepo)

	overdue := createLottery(t, ctx, 1, []string{"p1", "p2"})

	future := &entity.Post{
		Base:       entity.Base{ID: uuid.NewString()},
		AuthorID:   testutil.User1.ID,
		CategoryID: testutil.Category1.ID,
		Type:       entity.PostPoll,
		Title:      "future poll",
		Content:    "not due yet",
		Options:    []string{"a", "b"},
		Votes:      []int{0, 0},
	}
	endTime := clock.Now().Add(time.Hour)
	future.EndTime = &endTime
	require.NoError(t, postRepo.Create(ctx, future))

	require.NoError(t, registry.ReconcileOnStartup(ctx))

	got, err := postRepo.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	require.True(t, got.Resolved())
	require.False(t, registry.Armed(overdue.ID))

	got, err = postRepo.GetByID(ctx, future.ID)
	require.NoError(t, err)
	require.False(t, got.Resolved())
	require.True(t, registry.Armed(future.ID))

	registry.Cancel(future.ID)
}
