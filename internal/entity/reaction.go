package entity

import "database/sql"

type Reaction struct {
	Base

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	PostID    sql.NullString `gorm:"index"`
	CommentID sql.NullString `gorm:"index"`

	Emoji string
}
