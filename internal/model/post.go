package model

import "time"

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Post struct {
	ID           string     `json:"id"`
	AuthorID     string     `json:"author_id"`
	CategoryID   string     `json:"category_id"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Closed       bool       `json:"closed"`
	Pinned       bool       `json:"pinned"`
	CommentCount int64      `json:"comment_count"`
	LastReplyAt  *time.Time `json:"last_reply_at,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`

	Lottery  *Lottery  `json:"lottery,omitempty"`
	Poll     *Poll     `json:"poll,omitempty"`
	Proposal *Proposal `json:"proposal,omitempty"`
}

type Lottery struct {
	PrizeDescription string     `json:"prize_description"`
	PrizeIcon        string     `json:"prize_icon"`
	PrizeCount       int        `json:"prize_count"`
	PointCost        int        `json:"point_cost"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	Winners          []string   `json:"winners"`
}

type Poll struct {
	Options         []string `json:"options"`
	Votes           []int    `json:"votes"`
	Multiple        bool     `json:"multiple"`
	ResultAnnounced bool     `json:"result_announced"`
}

type Proposal struct {
	ProposedName        string `json:"proposed_name"`
	ProposalDescription string `json:"proposal_description"`
	Quorum              int    `json:"quorum"`
	ApproveThreshold    int    `json:"approve_threshold"`
	Status              string `json:"status"`
	ResultSnapshot      string `json:"result_snapshot"`
	RejectReason        string `json:"reject_reason"`
}

type CreatePostRequest struct {
	CategoryID string `json:"category_id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	EndTime    string `json:"end_time"`

	PrizeDescription string `json:"prize_description"`
	PrizeIcon        string `json:"prize_icon"`
	PrizeCount       int    `json:"prize_count"`
	PointCost        int    `json:"point_cost"`

	Options  []string `json:"options"`
	Multiple bool     `json:"multiple"`

	ProposedName        string `json:"proposed_name"`
	ProposalDescription string `json:"proposal_description"`
}

type CreatePostResponse struct {
	Post Post `json:"post"`
}

type GetPostRequest struct {
	PostID string `json:"post_id"`
}

type GetPostResponse struct {
	Post Post `json:"post"`
}

type DeletePostRequest struct {
	PostID string `json:"post_id"`
}

type DeletePostResponse struct{}

type JoinLotteryRequest struct {
	PostID string `json:"post_id"`
}

type JoinLotteryResponse struct{}

type VotePollRequest struct {
	PostID  string `json:"post_id"`
	Options []int  `json:"options"`
}

type VotePollResponse struct{}

type PinPostRequest struct {
	PostID string `json:"post_id"`
	Pinned bool   `json:"pinned"`
}

type PinPostResponse struct{}

type ClosePostRequest struct {
	PostID string `json:"post_id"`
	Closed bool   `json:"closed"`
}

type ClosePostResponse struct{}

type ResolvePostRequest struct {
	PostID string `json:"post_id"`
}

type ResolvePostResponse struct{}
