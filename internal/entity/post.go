package entity

import (
	"time"

	"github.com/openisle/backend/pkg/enum"
)

type PostType string

var (
	PostNormal   = enum.New(PostType("normal"))
	PostLottery  = enum.New(PostType("lottery"))
	PostPoll     = enum.New(PostType("poll"))
	PostProposal = enum.New(PostType("proposal"))
)

type ProposalStatus string

var (
	ProposalPending  = enum.New(ProposalStatus("pending"))
	ProposalApproved = enum.New(ProposalStatus("approved"))
	ProposalRejected = enum.New(ProposalStatus("rejected"))
)

// Post carries all variants in one table. Type selects which payload
// columns are meaningful; resolution dispatches on it.
type Post struct {
	Base

	AuthorID string
	Author   User `gorm:"foreignKey:AuthorID"`

	CategoryID string
	Category   Category `gorm:"foreignKey:CategoryID"`

	Type    PostType
	Title   string
	Content string

	Closed   bool
	PinnedAt *time.Time

	// Derived comment statistics, refreshed by full recompute after
	// every comment mutation.
	CommentCount int64
	LastReplyAt  *time.Time

	// EndTime is shared by all time-bound variants. Null means the post
	// never auto-resolves.
	EndTime *time.Time

	// Lottery payload. A lottery is resolved iff Winners is non-empty.
	PrizeDescription string
	PrizeIcon        string
	PrizeCount       int
	PointCost        int
	StartTime        *time.Time
	Winners          Array[string]

	// Poll payload. Votes is index-aligned with Options.
	Options         Array[string]
	Votes           Array[int]
	Multiple        bool
	ResultAnnounced bool

	// Proposal payload.
	ProposedName        string
	ProposalDescription string
	Quorum              int
	ApproveThreshold    int
	ProposalStatus      ProposalStatus
	ResultSnapshot      string
	RejectReason        string
}

// Resolved reports whether the post outcome is already frozen. For
// lotteries with no winners yet it is false even past the end time; a
// lottery with zero entrants never announces.
func (p *Post) Resolved() bool {
	switch p.Type {
	case PostLottery:
		return len(p.Winners) > 0
	case PostPoll:
		return p.ResultAnnounced
	case PostProposal:
		return p.ProposalStatus != ProposalPending
	}

	return true
}

// TimeBound reports whether the post auto-resolves at EndTime.
func (p *Post) TimeBound() bool {
	switch p.Type {
	case PostLottery, PostPoll, PostProposal:
		return p.EndTime != nil
	}

	return false
}

// PostParticipant records that a user engaged with a time-bound post
// (joined the lottery or voted). Membership is unique per post.
type PostParticipant struct {
	CreatedAt time.Time

	PostID string `gorm:"primaryKey"`
	Post   Post   `gorm:"foreignKey:PostID"`

	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`
}
