package testutil

import (
	"context"
	"time"

	"github.com/openisle/backend/config"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/pkg/logger"
	"github.com/openisle/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Post: config.PostConfigs{
			WebsiteURL:            "http://localhost:8080",
			CreateLimitWindow:     5 * time.Minute,
			CommentLimitPerMinute: 3,
		},
		Proposal: config.ProposalConfigs{
			Quorum:           10,
			ApproveThreshold: 60,
			Duration:         3 * 24 * time.Hour,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.DEBUG))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
