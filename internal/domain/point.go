package domain

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/xcontext"
)

// PointDomain is the only writer of User.Points. Every change appends a
// ledger entry first, then recomputes the balance from the surviving
// entries, so the balance can always be rebuilt from the ledger.
type PointDomain interface {
	Grant(ctx context.Context, userID string, amount int, reason, postID, commentID string) error
	Recalculate(ctx context.Context, userID string) error
}

type pointDomain struct {
	pointHistoryRepo repository.PointHistoryRepository
	userRepo         repository.UserRepository
}

func NewPointDomain(
	pointHistoryRepo repository.PointHistoryRepository,
	userRepo repository.UserRepository,
) *pointDomain {
	return &pointDomain{
		pointHistoryRepo: pointHistoryRepo,
		userRepo:         userRepo,
	}
}

func (d *pointDomain) Grant(
	ctx context.Context, userID string, amount int, reason, postID, commentID string,
) error {
	err := d.pointHistoryRepo.Create(ctx, &entity.PointHistory{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		PostID:    sql.NullString{String: postID, Valid: postID != ""},
		CommentID: sql.NullString{String: commentID, Valid: commentID != ""},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create point history: %v", err)
		return err
	}

	return d.Recalculate(ctx, userID)
}

func (d *pointDomain) Recalculate(ctx context.Context, userID string) error {
	total, err := d.pointHistoryRepo.SumActiveByUser(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum point history: %v", err)
		return err
	}

	if err := d.userRepo.UpdatePoints(ctx, userID, total); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update user points: %v", err)
		return err
	}

	return nil
}
