package finalizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
	"gorm.io/gorm"
)

// Registry owns one in-memory timer per unresolved time-bound post.
// Timer callbacks run with the base context the registry was built
// with, since the request context that armed them is long gone.
type Registry struct {
	ctx      context.Context
	clock    Clock
	resolver *Resolver
	postRepo repository.PostRepository

	timers *xsync.MapOf[string, *time.Timer]
}

func NewRegistry(
	ctx context.Context,
	clock Clock,
	resolver *Resolver,
	postRepo repository.PostRepository,
) *Registry {
	return &Registry{
		ctx:      ctx,
		clock:    clock,
		resolver: resolver,
		postRepo: postRepo,
		timers:   xsync.NewMapOf[*time.Timer](),
	}
}

// Arm registers a timer that resolves the post at the given time. A
// post can hold at most one handle; arming twice is a bug at the call
// site.
func (r *Registry) Arm(postID string, at time.Time) error {
	d := at.Sub(r.clock.Now())
	if d < 0 {
		d = 0
	}

	timer := time.AfterFunc(d, func() {
		r.timers.Delete(postID)

		err := r.resolver.Resolve(r.ctx, postID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(r.ctx).Errorf("Cannot resolve post %s on deadline: %v", postID, err)
		}
	})

	if _, existed := r.timers.LoadOrStore(postID, timer); existed {
		timer.Stop()
		return fmt.Errorf("post %s is already armed", postID)
	}

	return nil
}

// Cancel drops the post's timer handle if it holds one. Cancelling an
// unknown post is a no-op.
func (r *Registry) Cancel(postID string) {
	if timer, existed := r.timers.LoadAndDelete(postID); existed {
		timer.Stop()
	}
}

// Armed reports whether the post currently holds a timer handle.
func (r *Registry) Armed(postID string) bool {
	_, existed := r.timers.Load(postID)
	return existed
}

// ScheduleOrResolveIfDue arms a timer for a future deadline or resolves
// immediately when the deadline already passed. Posts without a
// deadline or with a frozen outcome are left alone.
func (r *Registry) ScheduleOrResolveIfDue(ctx context.Context, post *entity.Post) error {
	if !post.TimeBound() || post.Resolved() {
		return nil
	}

	if post.EndTime.After(r.clock.Now()) {
		return r.Arm(post.ID, *post.EndTime)
	}

	return r.resolver.Resolve(ctx, post.ID)
}

// ResolveNow cancels any pending timer and resolves the post
// synchronously.
func (r *Registry) ResolveNow(ctx context.Context, postID string) error {
	r.Cancel(postID)
	return r.resolver.Resolve(ctx, postID)
}

// ReconcileOnStartup scans for unresolved time-bound posts, re-arming
// the future ones and resolving the overdue ones before the server
// accepts traffic. Individual failures are logged and skipped so one
// bad post cannot block startup.
func (r *Registry) ReconcileOnStartup(ctx context.Context) error {
	posts, err := r.postRepo.GetUnresolvedTimeBound(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load unresolved posts: %v", err)
		return err
	}

	for _, post := range posts {
		if err := r.ScheduleOrResolveIfDue(ctx, &post); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reconcile post %s: %v", post.ID, err)
		}
	}

	return nil
}
