package entity

import (
	"context"

	"github.com/openisle/backend/pkg/xcontext"
)

// When this migrator is called, no need to call other migrators.
func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Category{},
		&Post{},
		&PostParticipant{},
		&PollVote{},
		&Comment{},
		&PointHistory{},
		&Reaction{},
		&PostSubscription{},
		&CommentSubscription{},
		&Notification{},
		&PostChangeLog{},
	)
}
