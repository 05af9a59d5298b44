package model

import "time"

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	ParentID  string    `json:"parent_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type AddCommentRequest struct {
	PostID  string `json:"post_id"`
	Content string `json:"content"`
}

type AddCommentResponse struct {
	Comment Comment `json:"comment"`
}

type AddReplyRequest struct {
	CommentID string `json:"comment_id"`
	Content   string `json:"content"`
}

type AddReplyResponse struct {
	Comment Comment `json:"comment"`
}

type DeleteCommentRequest struct {
	CommentID string `json:"comment_id"`
}

type DeleteCommentResponse struct{}
