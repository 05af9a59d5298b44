package domain

import (
	"context"
	"fmt"

	"github.com/openisle/backend/internal/domain/notification/event"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/model"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/errorx"
	"github.com/openisle/backend/pkg/xcontext"
)

type NotificationDomain interface {
	ListNotifications(context.Context, *model.ListNotificationsRequest) (*model.ListNotificationsResponse, error)
}

type notificationDomain struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationDomain(
	notificationRepo repository.NotificationRepository,
) NotificationDomain {
	return &notificationDomain{notificationRepo: notificationRepo}
}

// ListNotifications returns the caller's notifications newest first. The
// stored payload of each row is decoded back into its event to build the
// display text.
func (d *notificationDomain) ListNotifications(
	ctx context.Context, req *model.ListNotificationsRequest,
) (*model.ListNotificationsResponse, error) {
	rows, err := d.notificationRepo.GetByUser(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get notifications: %v", err)
		return nil, errorx.Unknown
	}

	notifications := make([]model.Notification, 0, len(rows))
	for i := range rows {
		notifications = append(notifications, convertNotification(ctx, &rows[i]))
	}

	return &model.ListNotificationsResponse{Notifications: notifications}, nil
}

func convertNotification(ctx context.Context, n *entity.Notification) model.Notification {
	text, err := notificationText(n.Type, n.Payload)
	if err != nil {
		// An undecodable payload still lists, just without text.
		xcontext.Logger(ctx).Warnf("Cannot decode payload of notification %s: %v", n.ID, err)
	}

	return model.Notification{
		ID:         n.ID,
		Type:       n.Type,
		Text:       text,
		PostID:     n.PostID.String,
		CommentID:  n.CommentID.String,
		FromUserID: n.FromUserID.String,
		Read:       n.Read,
		CreatedAt:  n.CreatedAt,
	}
}

func notificationText(op string, payload entity.Map) (string, error) {
	switch op {
	case "lottery_win":
		ev, err := event.Decode[event.LotteryWinEvent](payload)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("You won %s in %s", ev.Prize, ev.Title), nil

	case "lottery_draw":
		ev, err := event.Decode[event.LotteryDrawEvent](payload)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Your lottery %s drew %d winner(s)", ev.Title, len(ev.Winners)), nil

	case "poll_result_owner":
		ev, err := event.Decode[event.PollResultOwnerEvent](payload)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Your poll %s has closed", ev.Title), nil

	case "poll_result":
		ev, err := event.Decode[event.PollResultEvent](payload)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Results of %s are out", ev.Title), nil

	case "poll_vote":
		ev, err := event.Decode[event.PollVoteEvent](payload)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("Someone voted in %s", ev.Title), nil

	case "proposal_result_owner":
		ev, err := event.Decode[event.ProposalResultOwnerEvent](payload)
		if err != nil {
			return "", err
		}

		if ev.Approved {
			return fmt.Sprintf("Your proposal %s was approved", ev.Title), nil
		}

		return fmt.Sprintf("Your proposal %s was rejected: %s", ev.Title, ev.Reason), nil

	case "proposal_result":
		ev, err := event.Decode[event.ProposalResultEvent](payload)
		if err != nil {
			return "", err
		}

		if ev.Approved {
			return fmt.Sprintf("Proposal %s was approved", ev.Title), nil
		}

		return fmt.Sprintf("Proposal %s was rejected", ev.Title), nil

	case "comment_created":
		ev, err := event.Decode[event.CommentCreatedEvent](payload)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("New comment on %s", ev.Title), nil

	case "comment_reply":
		return "New reply to your comment", nil

	case "post_updated":
		ev, err := event.Decode[event.PostUpdatedEvent](payload)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("The %s of %s changed", ev.Field, ev.Title), nil

	case "post_deleted":
		ev, err := event.Decode[event.PostDeletedEvent](payload)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("%s was deleted", ev.Title), nil
	}

	return "", nil
}
