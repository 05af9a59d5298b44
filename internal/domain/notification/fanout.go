package notification

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fatih/structs"
	"github.com/google/uuid"
	"github.com/openisle/backend/internal/domain/notification/event"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/xcontext"
)

type EmailSender interface {
	Send(ctx context.Context, to entity.User, subject, body string) error
}

type PushSender interface {
	Push(ctx context.Context, userID string, req *event.EventRequest) error
}

// Fanout turns outcome and activity changes into per-user notification
// rows plus best-effort push and email delivery. Delivery failures are
// logged, never propagated; the caller's write must not depend on them.
type Fanout struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository

	emailSender EmailSender
	pushSender  PushSender
}

func NewFanout(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	emailSender EmailSender,
	pushSender PushSender,
) *Fanout {
	return &Fanout{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		emailSender:      emailSender,
		pushSender:       pushSender,
	}
}

func (f *Fanout) LotteryResolved(
	ctx context.Context, post *entity.Post, winners []string,
) {
	for _, winnerID := range winners {
		f.deliver(ctx, winnerID, &event.LotteryWinEvent{
			PostID: post.ID,
			Title:  post.Title,
			Prize:  post.PrizeDescription,
		}, post.ID, "", "")

		f.email(ctx, winnerID, "lottery_win",
			fmt.Sprintf("You won the lottery: %s", post.Title),
			fmt.Sprintf("Congratulations, you won %s. See %s/posts/%s",
				post.PrizeDescription, xcontext.Configs(ctx).Post.WebsiteURL, post.ID))
	}

	f.deliver(ctx, post.AuthorID, &event.LotteryDrawEvent{
		PostID:  post.ID,
		Title:   post.Title,
		Winners: winners,
	}, post.ID, "", "")

	f.email(ctx, post.AuthorID, "lottery_draw",
		fmt.Sprintf("Your lottery was drawn: %s", post.Title),
		fmt.Sprintf("Your lottery drew %d winner(s). See %s/posts/%s",
			len(winners), xcontext.Configs(ctx).Post.WebsiteURL, post.ID))
}

func (f *Fanout) PollResolved(
	ctx context.Context, post *entity.Post, participantIDs []string,
) {
	f.deliver(ctx, post.AuthorID, &event.PollResultOwnerEvent{
		PostID: post.ID,
		Title:  post.Title,
	}, post.ID, "", "")

	for _, userID := range participantIDs {
		if userID == post.AuthorID {
			continue
		}

		f.deliver(ctx, userID, &event.PollResultEvent{
			PostID: post.ID,
			Title:  post.Title,
		}, post.ID, "", "")
	}
}

func (f *Fanout) ProposalResolved(
	ctx context.Context, post *entity.Post, participantIDs []string,
) {
	approved := post.ProposalStatus == entity.ProposalApproved
	f.deliver(ctx, post.AuthorID, &event.ProposalResultOwnerEvent{
		PostID:   post.ID,
		Title:    post.Title,
		Approved: approved,
		Reason:   post.RejectReason,
	}, post.ID, "", "")

	for _, userID := range participantIDs {
		if userID == post.AuthorID {
			continue
		}

		f.deliver(ctx, userID, &event.ProposalResultEvent{
			PostID:   post.ID,
			Title:    post.Title,
			Approved: approved,
		}, post.ID, "", "")
	}
}

func (f *Fanout) CommentCreated(
	ctx context.Context, post *entity.Post, comment *entity.Comment, subscriberIDs []string,
) {
	for _, userID := range subscriberIDs {
		if userID == comment.AuthorID {
			continue
		}

		f.deliver(ctx, userID, &event.CommentCreatedEvent{
			PostID:    post.ID,
			CommentID: comment.ID,
			Title:     post.Title,
		}, post.ID, comment.ID, comment.AuthorID)
	}
}

func (f *Fanout) ReplyCreated(
	ctx context.Context, post *entity.Post, parent, reply *entity.Comment, subscriberIDs []string,
) {
	notified := map[string]bool{reply.AuthorID: true}

	if !notified[parent.AuthorID] {
		notified[parent.AuthorID] = true
		f.deliver(ctx, parent.AuthorID, &event.CommentReplyEvent{
			PostID:    post.ID,
			CommentID: reply.ID,
			ParentID:  parent.ID,
		}, post.ID, reply.ID, reply.AuthorID)
	}

	for _, userID := range subscriberIDs {
		if notified[userID] {
			continue
		}

		notified[userID] = true
		f.deliver(ctx, userID, &event.CommentCreatedEvent{
			PostID:    post.ID,
			CommentID: reply.ID,
			Title:     post.Title,
		}, post.ID, reply.ID, reply.AuthorID)
	}
}

func (f *Fanout) PollVoted(ctx context.Context, post *entity.Post, voterID string) {
	if voterID == post.AuthorID {
		return
	}

	f.deliver(ctx, post.AuthorID, &event.PollVoteEvent{
		PostID: post.ID,
		Title:  post.Title,
	}, post.ID, "", voterID)
}

func (f *Fanout) PostUpdated(
	ctx context.Context, post *entity.Post, field, actorID string, subscriberIDs []string,
) {
	for _, userID := range subscriberIDs {
		if userID == actorID {
			continue
		}

		f.deliver(ctx, userID, &event.PostUpdatedEvent{
			PostID: post.ID,
			Title:  post.Title,
			Field:  field,
		}, post.ID, "", actorID)
	}
}

func (f *Fanout) PostDeleted(ctx context.Context, post *entity.Post, userIDs []string) {
	for _, userID := range userIDs {
		// The post row is gone, so the notification carries no link.
		f.deliver(ctx, userID, &event.PostDeletedEvent{Title: post.Title}, "", "", "")
	}
}

func (f *Fanout) deliver(
	ctx context.Context, userID string, ev event.Event,
	postID, commentID, fromUserID string,
) {
	notification := &entity.Notification{
		Base:       entity.Base{ID: uuid.NewString()},
		UserID:     userID,
		Type:       ev.Op(),
		PostID:     sql.NullString{String: postID, Valid: postID != ""},
		CommentID:  sql.NullString{String: commentID, Valid: commentID != ""},
		FromUserID: sql.NullString{String: fromUserID, Valid: fromUserID != ""},
		Payload:    structs.Map(ev),
	}

	if err := f.notificationRepo.Create(ctx, notification); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot create notification of %s: %v", ev.Op(), err)
		return
	}

	if f.pushSender != nil {
		err := f.pushSender.Push(ctx, userID, event.New(ev, event.Metadata{To: userID}))
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot push notification of %s: %v", ev.Op(), err)
		}
	}
}

func (f *Fanout) email(ctx context.Context, userID, emailType, subject, body string) {
	if f.emailSender == nil {
		return
	}

	user, err := f.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get user to send email: %v", err)
		return
	}

	if user.Email == "" {
		return
	}

	for _, disabled := range user.DisabledEmailTypes {
		if disabled == emailType {
			return
		}
	}

	if err := f.emailSender.Send(ctx, *user, subject, body); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot send email of %s: %v", emailType, err)
	}
}
