package entity

type PollVote struct {
	Base

	PostID string `gorm:"index"`
	Post   Post   `gorm:"foreignKey:PostID"`

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	OptionIndex int
}
