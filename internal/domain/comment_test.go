package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/model"
	"github.com/openisle/backend/pkg/errorx"
	"github.com/openisle/backend/pkg/testutil"
	"github.com/openisle/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createNormalPost(t *testing.T, ctx context.Context, d *testDomains) *entity.Post {
	post := &entity.Post{
		Base:       entity.Base{ID: uuid.NewString()},
		AuthorID:   testutil.User1.ID,
		CategoryID: testutil.Category1.ID,
		Type:       entity.PostNormal,
		Title:      "hello",
		Content:    "world",
	}
	require.NoError(t, d.postRepo.Create(ctx, post))
	require.NoError(t, d.subscriptionRepo.SubscribePost(ctx, post.ID, post.AuthorID))

	return post
}

func Test_commentDomain_AddComment(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)
	post := createNormalPost(t, ctx, d)

	ctx = xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	resp, err := d.commentDomain.AddComment(ctx, &model.AddCommentRequest{
		PostID:  post.ID,
		Content: "first",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Comment.ID)
	require.Equal(t, testutil.User2.ID, resp.Comment.AuthorID)

	got, err := d.postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.CommentCount)
	require.NotNil(t, got.LastReplyAt)

	// The author earns a point and gets subscribed to the post.
	user, err := d.userRepo.GetByID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, 1, user.Points)

	subscriberIDs, err := d.subscriptionRepo.GetPostSubscriberIDs(ctx, post.ID)
	require.NoError(t, err)
	require.Contains(t, subscriberIDs, testutil.User2.ID)

	// The post author is notified, the comment author is not.
	require.Len(t, d.pushSender.Pushed, 1)
	require.Equal(t, testutil.User1.ID, d.pushSender.Pushed[0].UserID)
	require.Equal(t, "comment_created", d.pushSender.Pushed[0].Request.Op)
}

func Test_commentDomain_AddComment_closed_post(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)
	post := createNormalPost(t, ctx, d)
	require.NoError(t, d.postRepo.SetClosed(ctx, post.ID, true))

	ctx = xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	_, err := d.commentDomain.AddComment(ctx, &model.AddCommentRequest{
		PostID:  post.ID,
		Content: "too late",
	})
	requireErrorCode(t, err, errorx.Unavailable)
}

func Test_commentDomain_AddComment_rate_limited(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)
	post := createNormalPost(t, ctx, d)

	ctx = xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	for i := 0; i < 3; i++ {
		_, err := d.commentDomain.AddComment(ctx, &model.AddCommentRequest{
			PostID:  post.ID,
			Content: "spam",
		})
		require.NoError(t, err)
	}

	_, err := d.commentDomain.AddComment(ctx, &model.AddCommentRequest{
		PostID:  post.ID,
		Content: "spam",
	})
	requireErrorCode(t, err, errorx.TooManyRequests)
}

func Test_commentDomain_AddReply_notifies_parent_author(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)
	post := createNormalPost(t, ctx, d)

	userCtx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	root, err := d.commentDomain.AddComment(userCtx, &model.AddCommentRequest{
		PostID:  post.ID,
		Content: "root",
	})
	require.NoError(t, err)

	d.pushSender.Pushed = nil

	replyCtx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	reply, err := d.commentDomain.AddReply(replyCtx, &model.AddReplyRequest{
		CommentID: root.Comment.ID,
		Content:   "reply",
	})
	require.NoError(t, err)
	require.Equal(t, root.Comment.ID, reply.Comment.ParentID)

	require.Len(t, d.pushSender.Pushed, 1)
	require.Equal(t, testutil.User1.ID, d.pushSender.Pushed[0].UserID)
	require.Equal(t, "comment_reply", d.pushSender.Pushed[0].Request.Op)
}

func Test_commentDomain_DeleteComment_cascades_depth_first(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)
	post := createNormalPost(t, ctx, d)

	user1Ctx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	user2Ctx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)

	root, err := d.commentDomain.AddComment(user2Ctx, &model.AddCommentRequest{
		PostID:  post.ID,
		Content: "root",
	})
	require.NoError(t, err)

	reply1, err := d.commentDomain.AddReply(user1Ctx, &model.AddReplyRequest{
		CommentID: root.Comment.ID,
		Content:   "reply1",
	})
	require.NoError(t, err)

	reply2, err := d.commentDomain.AddReply(user2Ctx, &model.AddReplyRequest{
		CommentID: reply1.Comment.ID,
		Content:   "reply2",
	})
	require.NoError(t, err)

	require.NoError(t, d.reactionRepo.Create(ctx, &entity.Reaction{
		Base:      entity.Base{ID: uuid.NewString()},
		UserID:    testutil.User1.ID,
		CommentID: nullString(reply2.Comment.ID),
		Emoji:     "+1",
	}))

	user1, err := d.userRepo.GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, 1, user1.Points)

	user2, err := d.userRepo.GetByID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, 2, user2.Points)

	// The comment author deletes the root; the whole subtree goes away.
	_, err = d.commentDomain.DeleteComment(user2Ctx, &model.DeleteCommentRequest{
		CommentID: root.Comment.ID,
	})
	require.NoError(t, err)

	for _, commentID := range []string{root.Comment.ID, reply1.Comment.ID, reply2.Comment.ID} {
		_, err := d.commentRepo.GetByID(ctx, commentID)
		require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	}

	count, err := d.reactionRepo.CountByComment(ctx, reply2.Comment.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)

	// Points of every touched user are recomputed from the ledger.
	user1, err = d.userRepo.GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, 0, user1.Points)

	user2, err = d.userRepo.GetByID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Equal(t, 0, user2.Points)

	// Stats fall back to the post creation time when no comment is left.
	got, err := d.postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), got.CommentCount)
	require.NotNil(t, got.LastReplyAt)
	require.WithinDuration(t, got.CreatedAt, *got.LastReplyAt, time.Second)
}

func Test_commentDomain_DeleteComment_releases_embedded_images(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)
	post := createNormalPost(t, ctx, d)

	user1Ctx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	root, err := d.commentDomain.AddComment(user1Ctx, &model.AddCommentRequest{
		PostID:  post.ID,
		Content: "look ![cat](/uploads/cat.png)",
	})
	require.NoError(t, err)

	reply, err := d.commentDomain.AddReply(user1Ctx, &model.AddReplyRequest{
		CommentID: root.Comment.ID,
		Content:   "also ![dog](/uploads/dog.png)",
	})
	require.NoError(t, err)

	idByContent := map[string]string{
		root.Comment.Content:  root.Comment.ID,
		reply.Comment.Content: reply.Comment.ID,
	}

	// References are released while the owning comment row still exists.
	var released []string
	d.imageReleaser.ReleaseFunc = func(ctx context.Context, content string) error {
		_, err := d.commentRepo.GetByID(ctx, idByContent[content])
		require.NoError(t, err)

		released = append(released, content)
		return nil
	}

	_, err = d.commentDomain.DeleteComment(user1Ctx, &model.DeleteCommentRequest{
		CommentID: root.Comment.ID,
	})
	require.NoError(t, err)

	require.Equal(t, []string{reply.Comment.Content, root.Comment.Content}, released)
}

func Test_commentDomain_DeleteComment_permission(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(ctx)
	post := createNormalPost(t, ctx, d)

	user1Ctx := xcontext.WithRequestUserID(ctx, testutil.User1.ID)
	root, err := d.commentDomain.AddComment(user1Ctx, &model.AddCommentRequest{
		PostID:  post.ID,
		Content: "mine",
	})
	require.NoError(t, err)

	user2Ctx := xcontext.WithRequestUserID(ctx, testutil.User2.ID)
	_, err = d.commentDomain.DeleteComment(user2Ctx, &model.DeleteCommentRequest{
		CommentID: root.Comment.ID,
	})
	requireErrorCode(t, err, errorx.PermissionDenied)

	adminCtx := xcontext.WithRequestUserID(ctx, testutil.Admin.ID)
	_, err = d.commentDomain.DeleteComment(adminCtx, &model.DeleteCommentRequest{
		CommentID: root.Comment.ID,
	})
	require.NoError(t, err)
}
