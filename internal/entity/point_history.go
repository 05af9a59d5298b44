package entity

import (
	"database/sql"
	"time"
)

// PointHistory is the append-only point ledger. Entries are never
// physically removed; DeletedAt is a logical tombstone that excludes an
// entry from the user's total while preserving the audit trail. It is a
// plain timestamp on purpose: gorm's soft delete would hide tombstoned
// rows from audit queries.
type PointHistory struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Amount int
	Reason string

	// An entry is owned by exactly one of post or comment.
	PostID    sql.NullString `gorm:"index"`
	CommentID sql.NullString `gorm:"index"`

	DeletedAt *time.Time
}
