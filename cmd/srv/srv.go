package main

import (
	"context"

	"github.com/openisle/backend/config"
	"github.com/openisle/backend/internal/domain"
	"github.com/openisle/backend/internal/domain/finalizer"
	"github.com/openisle/backend/internal/domain/notification"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
)

type srv struct {
	ctx context.Context
	app *cli.App

	userRepo         repository.UserRepository
	categoryRepo     repository.CategoryRepository
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	pollVoteRepo     repository.PollVoteRepository
	pointHistoryRepo repository.PointHistoryRepository
	reactionRepo     repository.ReactionRepository
	subscriptionRepo repository.SubscriptionRepository
	notificationRepo repository.NotificationRepository
	changeLogRepo    repository.PostChangeLogRepository

	redisClient xredis.Client

	fanout   *notification.Fanout
	resolver *finalizer.Resolver
	registry *finalizer.Registry
	cascade  *domain.Cascade

	pointDomain        domain.PointDomain
	postDomain         domain.PostDomain
	commentDomain      domain.CommentDomain
	notificationDomain domain.NotificationDomain

	configs config.Configs
}
