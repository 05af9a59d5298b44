package entity

import "database/sql"

type PostChangeLog struct {
	Base

	PostID string `gorm:"index"`
	Post   Post   `gorm:"foreignKey:PostID"`

	// UserID is empty for system-generated entries such as vote and
	// lottery results.
	UserID sql.NullString

	Field    string
	OldValue string
	NewValue string
}
