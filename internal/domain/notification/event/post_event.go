package event

// LOTTERY WIN EVENT
type LotteryWinEvent struct {
	PostID string `json:"post_id"`
	Title  string `json:"title"`
	Prize  string `json:"prize"`
}

func (*LotteryWinEvent) Op() string {
	return "lottery_win"
}

// LOTTERY DRAW EVENT
type LotteryDrawEvent struct {
	PostID  string   `json:"post_id"`
	Title   string   `json:"title"`
	Winners []string `json:"winners"`
}

func (*LotteryDrawEvent) Op() string {
	return "lottery_draw"
}

// POLL RESULT OWNER EVENT
type PollResultOwnerEvent struct {
	PostID string `json:"post_id"`
	Title  string `json:"title"`
}

func (*PollResultOwnerEvent) Op() string {
	return "poll_result_owner"
}

// POLL RESULT PARTICIPANT EVENT
type PollResultEvent struct {
	PostID string `json:"post_id"`
	Title  string `json:"title"`
}

func (*PollResultEvent) Op() string {
	return "poll_result"
}

// POLL VOTE EVENT
type PollVoteEvent struct {
	PostID string `json:"post_id"`
	Title  string `json:"title"`
}

func (*PollVoteEvent) Op() string {
	return "poll_vote"
}

// PROPOSAL RESULT OWNER EVENT
type ProposalResultOwnerEvent struct {
	PostID   string `json:"post_id"`
	Title    string `json:"title"`
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

func (*ProposalResultOwnerEvent) Op() string {
	return "proposal_result_owner"
}

// PROPOSAL RESULT PARTICIPANT EVENT
type ProposalResultEvent struct {
	PostID   string `json:"post_id"`
	Title    string `json:"title"`
	Approved bool   `json:"approved"`
}

func (*ProposalResultEvent) Op() string {
	return "proposal_result"
}

// POST UPDATED EVENT
type PostUpdatedEvent struct {
	PostID string `json:"post_id"`
	Title  string `json:"title"`
	Field  string `json:"field"`
}

func (*PostUpdatedEvent) Op() string {
	return "post_updated"
}

// POST DELETED EVENT
type PostDeletedEvent struct {
	Title string `json:"title"`
}

func (*PostDeletedEvent) Op() string {
	return "post_deleted"
}
