package entity

import "time"

type PostSubscription struct {
	CreatedAt time.Time

	PostID string `gorm:"primaryKey"`
	Post   Post   `gorm:"foreignKey:PostID"`

	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`
}

type CommentSubscription struct {
	CreatedAt time.Time

	CommentID string  `gorm:"primaryKey"`
	Comment   Comment `gorm:"foreignKey:CommentID"`

	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`
}
