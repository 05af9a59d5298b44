package entity

import "database/sql"

type Notification struct {
	Base

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Type string

	PostID     sql.NullString `gorm:"index"`
	CommentID  sql.NullString `gorm:"index"`
	FromUserID sql.NullString

	Payload Map

	Read bool
}
