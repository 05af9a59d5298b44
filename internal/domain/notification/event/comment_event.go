package event

// COMMENT CREATED EVENT
type CommentCreatedEvent struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	Title     string `json:"title"`
}

func (*CommentCreatedEvent) Op() string {
	return "comment_created"
}

// COMMENT REPLY EVENT
type CommentReplyEvent struct {
	PostID    string `json:"post_id"`
	CommentID string `json:"comment_id"`
	ParentID  string `json:"parent_id"`
}

func (*CommentReplyEvent) Op() string {
	return "comment_reply"
}
