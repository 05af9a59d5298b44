package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/openisle/backend/config"
	"github.com/openisle/backend/internal/domain"
	"github.com/openisle/backend/internal/domain/finalizer"
	"github.com/openisle/backend/internal/domain/notification"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/logger"
	"github.com/openisle/backend/pkg/xcontext"
	"github.com/openisle/backend/pkg/xredis"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func (s *srv) loadConfig() {
	s.configs = config.Configs{
		Env: getEnv("ENV", "local"),
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "openisle"),
			User:     getEnv("MYSQL_USER", "openisle"),
			Password: getEnv("MYSQL_PASSWORD", "openisle"),
		},
		Server: config.ServerConfigs{
			Host: getEnv("HOST", "localhost"),
			Port: getEnv("PORT", "8080"),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Post: config.PostConfigs{
			WebsiteURL:            getEnv("WEBSITE_URL", "http://localhost:8080"),
			CreateLimitWindow:     getDurationEnv("POST_CREATE_LIMIT_WINDOW", 5*time.Minute),
			CommentLimitPerMinute: getIntEnv("COMMENT_LIMIT_PER_MINUTE", 3),
		},
		Proposal: config.ProposalConfigs{
			Quorum:           getIntEnv("PROPOSAL_QUORUM", 10),
			ApproveThreshold: getIntEnv("PROPOSAL_APPROVE_THRESHOLD", 60),
			Duration:         getDurationEnv("PROPOSAL_DURATION", 3*24*time.Hour),
		},
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, s.configs)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.INFO))
}

func (s *srv) loadDatabase() {
	db, err := gorm.Open(mysql.Open(s.configs.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
}

func (s *srv) loadRedis() {
	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = client
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.categoryRepo = repository.NewCategoryRepository()
	s.postRepo = repository.NewPostRepository()
	s.commentRepo = repository.NewCommentRepository()
	s.pollVoteRepo = repository.NewPollVoteRepository()
	s.pointHistoryRepo = repository.NewPointHistoryRepository()
	s.reactionRepo = repository.NewReactionRepository()
	s.subscriptionRepo = repository.NewSubscriptionRepository()
	s.notificationRepo = repository.NewNotificationRepository()
	s.changeLogRepo = repository.NewPostChangeLogRepository()
}

func (s *srv) loadDomains() {
	clock := finalizer.NewClock()

	s.fanout = notification.NewFanout(
		s.notificationRepo, s.userRepo, newLogEmailSender(), newLogPushSender())
	s.resolver = finalizer.NewResolver(
		s.postRepo, s.pollVoteRepo, s.categoryRepo, s.changeLogRepo, s.fanout)
	s.registry = finalizer.NewRegistry(s.ctx, clock, s.resolver, s.postRepo)
	s.cascade = domain.NewCascade(
		s.postRepo, s.commentRepo, s.pointHistoryRepo, s.reactionRepo,
		s.subscriptionRepo, s.notificationRepo, s.pollVoteRepo, s.changeLogRepo,
		newLogImageReleaser())
	s.pointDomain = domain.NewPointDomain(s.pointHistoryRepo, s.userRepo)
	s.postDomain = domain.NewPostDomain(
		s.postRepo, s.categoryRepo, s.userRepo, s.pollVoteRepo,
		s.subscriptionRepo, s.changeLogRepo, s.cascade, s.pointDomain,
		s.registry, s.fanout, clock, s.redisClient)
	s.commentDomain = domain.NewCommentDomain(
		s.commentRepo, s.postRepo, s.userRepo, s.subscriptionRepo,
		s.cascade, s.pointDomain, s.fanout)
	s.notificationDomain = domain.NewNotificationDomain(s.notificationRepo)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getIntEnv(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return value
}
