package entity

import (
	"database/sql"
	"time"
)

type Comment struct {
	Base

	PostID string
	Post   Post `gorm:"foreignKey:PostID"`

	AuthorID string
	Author   User `gorm:"foreignKey:AuthorID"`

	// ParentID is null for top-level comments.
	ParentID sql.NullString `gorm:"index"`

	Content  string
	PinnedAt *time.Time
}
