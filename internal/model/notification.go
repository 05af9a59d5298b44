package model

import "time"

type Notification struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Text       string    `json:"text"`
	PostID     string    `json:"post_id,omitempty"`
	CommentID  string    `json:"comment_id,omitempty"`
	FromUserID string    `json:"from_user_id,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListNotificationsRequest struct{}

type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}
