package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/openisle/backend/internal/domain/finalizer"
	"github.com/openisle/backend/internal/domain/notification"
	"github.com/openisle/backend/internal/entity"
	"github.com/openisle/backend/internal/model"
	"github.com/openisle/backend/internal/repository"
	"github.com/openisle/backend/pkg/enum"
	"github.com/openisle/backend/pkg/errorx"
	"github.com/openisle/backend/pkg/xcontext"
	"github.com/openisle/backend/pkg/xredis"
	"gorm.io/gorm"
)

const maxLotteryPointCost = 100

type PostDomain interface {
	CreatePost(ctx context.Context, req *model.CreatePostRequest) (*model.CreatePostResponse, error)
	GetPost(ctx context.Context, req *model.GetPostRequest) (*model.GetPostResponse, error)
	DeletePost(ctx context.Context, req *model.DeletePostRequest) (*model.DeletePostResponse, error)
	JoinLottery(ctx context.Context, req *model.JoinLotteryRequest) (*model.JoinLotteryResponse, error)
	VotePoll(ctx context.Context, req *model.VotePollRequest) (*model.VotePollResponse, error)
	PinPost(ctx context.Context, req *model.PinPostRequest) (*model.PinPostResponse, error)
	ClosePost(ctx context.Context, req *model.ClosePostRequest) (*model.ClosePostResponse, error)
	ResolvePost(ctx context.Context, req *model.ResolvePostRequest) (*model.ResolvePostResponse, error)
}

type postDomain struct {
	postRepo         repository.PostRepository
	categoryRepo     repository.CategoryRepository
	userRepo         repository.UserRepository
	pollVoteRepo     repository.PollVoteRepository
	subscriptionRepo repository.SubscriptionRepository
	changeLogRepo    repository.PostChangeLogRepository

	cascade     *Cascade
	pointDomain PointDomain
	registry    *finalizer.Registry
	fanout      *notification.Fanout
	clock       finalizer.Clock
	redisClient xredis.Client
}

func NewPostDomain(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	userRepo repository.UserRepository,
	pollVoteRepo repository.PollVoteRepository,
	subscriptionRepo repository.SubscriptionRepository,
	changeLogRepo repository.PostChangeLogRepository,
	cascade *Cascade,
	pointDomain PointDomain,
	registry *finalizer.Registry,
	fanout *notification.Fanout,
	clock finalizer.Clock,
	redisClient xredis.Client,
) *postDomain {
	return &postDomain{
		postRepo:         postRepo,
		categoryRepo:     categoryRepo,
		userRepo:         userRepo,
		pollVoteRepo:     pollVoteRepo,
		subscriptionRepo: subscriptionRepo,
		changeLogRepo:    changeLogRepo,
		cascade:          cascade,
		pointDomain:      pointDomain,
		registry:         registry,
		fanout:           fanout,
		clock:            clock,
		redisClient:      redisClient,
	}
}

func (d *postDomain) CreatePost(
	ctx context.Context, req *model.CreatePostRequest,
) (*model.CreatePostResponse, error) {
	if req.Title == "" || req.Content == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty title or content")
	}

	userID := xcontext.RequestUserID(ctx)
	if err := d.checkCreateRate(ctx, userID); err != nil {
		return nil, err
	}

	if _, err := d.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found category")
		}

		xcontext.Logger(ctx).Errorf("Cannot get category: %v", err)
		return nil, errorx.Unknown
	}

	postType, err := enum.ToEnum[entity.PostType](req.Type)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid post type %s", req.Type)
	}

	post := &entity.Post{
		Base:       entity.Base{ID: uuid.NewString()},
		AuthorID:   userID,
		CategoryID: req.CategoryID,
		Type:       postType,
		Title:      req.Title,
		Content:    req.Content,
	}

	endTime, err := d.parseEndTime(req.EndTime)
	if err != nil {
		return nil, err
	}
	post.EndTime = endTime

	switch postType {
	case entity.PostNormal:
		if post.EndTime != nil {
			return nil, errorx.New(errorx.BadRequest, "Normal posts cannot have an end time")
		}

	case entity.PostLottery:
		if err := d.fillLottery(ctx, post, req); err != nil {
			return nil, err
		}

	case entity.PostPoll:
		if err := d.fillPoll(ctx, post, req); err != nil {
			return nil, err
		}

	case entity.PostProposal:
		if err := d.fillProposal(ctx, post, req); err != nil {
			return nil, err
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.postRepo.Create(ctx, post); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create post: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.subscriptionRepo.SubscribePost(ctx, post.ID, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot subscribe post: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	if err := d.registry.ScheduleOrResolveIfDue(ctx, post); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot schedule post %s: %v", post.ID, err)
	}

	return &model.CreatePostResponse{Post: convertPost(post)}, nil
}

func (d *postDomain) GetPost(
	ctx context.Context, req *model.GetPostRequest,
) (*model.GetPostResponse, error) {
	post, err := d.getPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	return &model.GetPostResponse{Post: convertPost(post)}, nil
}

func (d *postDomain) DeletePost(
	ctx context.Context, req *model.DeletePostRequest,
) (*model.DeletePostResponse, error) {
	post, err := d.getPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if err := d.checkCanModify(ctx, post.AuthorID); err != nil {
		return nil, err
	}

	subscriberIDs, err := d.subscriptionRepo.GetPostSubscriberIDs(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get post subscribers: %v", err)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	affectedUserIDs, err := d.cascade.DeletePost(ctx, post)
	if err != nil {
		return nil, errorx.Unknown
	}

	for _, affectedID := range affectedUserIDs {
		if err := d.pointDomain.Recalculate(ctx, affectedID); err != nil {
			return nil, errorx.Unknown
		}
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	d.registry.Cancel(post.ID)
	d.fanout.PostDeleted(ctx, post, subscriberIDs)

	return &model.DeletePostResponse{}, nil
}

func (d *postDomain) JoinLottery(
	ctx context.Context, req *model.JoinLotteryRequest,
) (*model.JoinLotteryResponse, error) {
	post, err := d.getPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if post.Type != entity.PostLottery {
		return nil, errorx.New(errorx.BadRequest, "Not a lottery post")
	}

	if post.Resolved() {
		return nil, errorx.New(errorx.Unavailable, "Lottery was already drawn")
	}

	if post.Closed {
		return nil, errorx.New(errorx.Unavailable, "Post was closed")
	}

	if post.EndTime != nil && !post.EndTime.After(d.clock.Now()) {
		return nil, errorx.New(errorx.Unavailable, "Lottery was already ended")
	}

	userID := xcontext.RequestUserID(ctx)
	if post.PointCost > 0 {
		user, err := d.userRepo.GetByID(ctx, userID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errorx.Unknown
		}

		if user.Points < post.PointCost {
			return nil, errorx.New(errorx.Unavailable, "Not enough points")
		}
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	added, err := d.postRepo.AddParticipant(ctx, post.ID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add participant: %v", err)
		return nil, errorx.Unknown
	}

	if !added {
		return nil, errorx.New(errorx.AlreadyExists, "You already joined this lottery")
	}

	if post.PointCost > 0 {
		err := d.pointDomain.Grant(
			ctx, userID, -post.PointCost, "join_lottery", post.ID, "")
		if err != nil {
			return nil, errorx.Unknown
		}
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	if post.PointCost > 0 {
		xcontext.Logger(ctx).Debugf("User %s paid %d points to join %s", userID, post.PointCost, post.ID)
	}

	return &model.JoinLotteryResponse{}, nil
}

func (d *postDomain) VotePoll(
	ctx context.Context, req *model.VotePollRequest,
) (*model.VotePollResponse, error) {
	post, err := d.getPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if post.Type != entity.PostPoll && post.Type != entity.PostProposal {
		return nil, errorx.New(errorx.BadRequest, "Not a votable post")
	}

	if post.Resolved() {
		return nil, errorx.New(errorx.Unavailable, "Result was already announced")
	}

	if post.Closed {
		return nil, errorx.New(errorx.Unavailable, "Post was closed")
	}

	if post.EndTime != nil && !post.EndTime.After(d.clock.Now()) {
		return nil, errorx.New(errorx.Unavailable, "Voting was already ended")
	}

	if len(req.Options) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty vote")
	}

	if !post.Multiple && len(req.Options) > 1 {
		return nil, errorx.New(errorx.BadRequest, "Not allow multiple options")
	}

	chosen := map[int]bool{}
	for _, index := range req.Options {
		if index < 0 || index >= len(post.Options) {
			return nil, errorx.New(errorx.BadRequest, "Invalid option %d", index)
		}

		if chosen[index] {
			return nil, errorx.New(errorx.BadRequest, "Duplicated option %d", index)
		}
		chosen[index] = true
	}

	userID := xcontext.RequestUserID(ctx)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	added, err := d.postRepo.AddParticipant(ctx, post.ID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add participant: %v", err)
		return nil, errorx.Unknown
	}

	if !added {
		return nil, errorx.New(errorx.AlreadyExists, "You already voted")
	}

	for _, index := range req.Options {
		err := d.pollVoteRepo.Create(ctx, &entity.PollVote{
			Base:        entity.Base{ID: uuid.NewString()},
			PostID:      post.ID,
			UserID:      userID,
			OptionIndex: index,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create poll vote: %v", err)
			return nil, errorx.Unknown
		}
	}

	counts, err := d.pollVoteRepo.CountAllOptions(ctx, post.ID, len(post.Options))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count poll votes: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.postRepo.UpdateVotes(ctx, post.ID, counts); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update vote snapshot: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	d.fanout.PollVoted(ctx, post, userID)

	return &model.VotePollResponse{}, nil
}

func (d *postDomain) PinPost(
	ctx context.Context, req *model.PinPostRequest,
) (*model.PinPostResponse, error) {
	post, err := d.getPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if err := d.checkAdmin(ctx); err != nil {
		return nil, err
	}

	var pinnedAt *time.Time
	if req.Pinned {
		now := d.clock.Now()
		pinnedAt = &now
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.postRepo.SetPinnedAt(ctx, post.ID, pinnedAt); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot pin post: %v", err)
		return nil, errorx.Unknown
	}

	err = d.logChange(ctx, post.ID, "pinned",
		strconv.FormatBool(post.PinnedAt != nil), strconv.FormatBool(req.Pinned))
	if err != nil {
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	d.notifySubscribers(ctx, post, "pinned")

	return &model.PinPostResponse{}, nil
}

func (d *postDomain) ClosePost(
	ctx context.Context, req *model.ClosePostRequest,
) (*model.ClosePostResponse, error) {
	post, err := d.getPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if err := d.checkCanModify(ctx, post.AuthorID); err != nil {
		return nil, err
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.postRepo.SetClosed(ctx, post.ID, req.Closed); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot close post: %v", err)
		return nil, errorx.Unknown
	}

	err = d.logChange(ctx, post.ID, "closed",
		strconv.FormatBool(post.Closed), strconv.FormatBool(req.Closed))
	if err != nil {
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithCommitDBTransaction(ctx)

	d.notifySubscribers(ctx, post, "closed")

	return &model.ClosePostResponse{}, nil
}

func (d *postDomain) ResolvePost(
	ctx context.Context, req *model.ResolvePostRequest,
) (*model.ResolvePostResponse, error) {
	post, err := d.getPost(ctx, req.PostID)
	if err != nil {
		return nil, err
	}

	if err := d.checkCanModify(ctx, post.AuthorID); err != nil {
		return nil, err
	}

	if post.Type == entity.PostNormal {
		return nil, errorx.New(errorx.BadRequest, "Post has no outcome to resolve")
	}

	if err := d.registry.ResolveNow(ctx, post.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found post")
		}

		return nil, errorx.Unknown
	}

	return &model.ResolvePostResponse{}, nil
}

func (d *postDomain) fillLottery(
	ctx context.Context, post *entity.Post, req *model.CreatePostRequest,
) error {
	if req.PrizeCount < 1 {
		return errorx.New(errorx.BadRequest, "Lottery needs at least one prize")
	}

	if req.PointCost < 0 || req.PointCost > maxLotteryPointCost {
		return errorx.New(errorx.BadRequest,
			"Point cost must be between 0 and %d", maxLotteryPointCost)
	}

	if post.EndTime == nil {
		return errorx.New(errorx.BadRequest, "Lottery needs an end time")
	}

	if !post.EndTime.After(d.clock.Now()) {
		return errorx.New(errorx.BadRequest, "End time must be in the future")
	}

	now := d.clock.Now()
	post.PrizeDescription = req.PrizeDescription
	post.PrizeIcon = req.PrizeIcon
	post.PrizeCount = req.PrizeCount
	post.PointCost = req.PointCost
	post.StartTime = &now

	return nil
}

func (d *postDomain) fillPoll(
	ctx context.Context, post *entity.Post, req *model.CreatePostRequest,
) error {
	if len(req.Options) < 2 {
		return errorx.New(errorx.BadRequest, "Poll needs at least two options")
	}

	if post.EndTime == nil {
		return errorx.New(errorx.BadRequest, "Poll needs an end time")
	}

	if !post.EndTime.After(d.clock.Now()) {
		return errorx.New(errorx.BadRequest, "End time must be in the future")
	}

	post.Options = req.Options
	post.Votes = make([]int, len(req.Options))
	post.Multiple = req.Multiple

	return nil
}

func (d *postDomain) fillProposal(
	ctx context.Context, post *entity.Post, req *model.CreatePostRequest,
) error {
	if req.ProposedName == "" {
		return errorx.New(errorx.BadRequest, "Proposal needs a category name")
	}

	existed, err := d.categoryRepo.ExistsByName(ctx, req.ProposedName)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check category name: %v", err)
		return errorx.Unknown
	}

	if existed {
		return errorx.New(errorx.AlreadyExists, "Category %s already exists", req.ProposedName)
	}

	proposed, err := d.postRepo.ExistsProposalName(ctx, req.ProposedName)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check proposal name: %v", err)
		return errorx.Unknown
	}

	if proposed {
		return errorx.New(errorx.AlreadyExists,
			"Category %s was already proposed", req.ProposedName)
	}

	cfg := xcontext.Configs(ctx).Proposal
	if post.EndTime == nil {
		endTime := d.clock.Now().Add(cfg.Duration)
		post.EndTime = &endTime
	} else if !post.EndTime.After(d.clock.Now()) {
		return errorx.New(errorx.BadRequest, "End time must be in the future")
	}

	post.ProposedName = req.ProposedName
	post.ProposalDescription = req.ProposalDescription
	post.Quorum = cfg.Quorum
	post.ApproveThreshold = cfg.ApproveThreshold
	post.ProposalStatus = entity.ProposalPending
	post.Options = []string{"approve", "reject"}
	post.Votes = []int{0, 0}

	return nil
}

func (d *postDomain) checkCreateRate(ctx context.Context, userID string) error {
	window := xcontext.Configs(ctx).Post.CreateLimitWindow
	if window <= 0 {
		return nil
	}

	key := fmt.Sprintf("create_post:%s", userID)
	existed, err := d.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot check post rate limit: %v", err)
		return nil
	}

	if existed {
		return errorx.New(errorx.TooManyRequests, "You are creating posts too fast")
	}

	if err := d.redisClient.Set(ctx, key, "1", window); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot set post rate limit: %v", err)
	}

	return nil
}

func (d *postDomain) getPost(ctx context.Context, postID string) (*entity.Post, error) {
	post, err := d.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found post")
		}

		xcontext.Logger(ctx).Errorf("Cannot get post: %v", err)
		return nil, errorx.Unknown
	}

	return post, nil
}

func (d *postDomain) checkCanModify(ctx context.Context, authorID string) error {
	userID := xcontext.RequestUserID(ctx)
	if userID == authorID {
		return nil
	}

	return d.checkAdmin(ctx)
}

func (d *postDomain) checkAdmin(ctx context.Context) error {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return errorx.Unknown
	}

	if user.Role != entity.RoleAdmin {
		return errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	return nil
}

func (d *postDomain) logChange(ctx context.Context, postID, field, oldValue, newValue string) error {
	err := d.changeLogRepo.Create(ctx, &entity.PostChangeLog{
		Base:     entity.Base{ID: uuid.NewString()},
		PostID:   postID,
		UserID:   nullString(xcontext.RequestUserID(ctx)),
		Field:    field,
		OldValue: oldValue,
		NewValue: newValue,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create change log: %v", err)
		return err
	}

	return nil
}

func (d *postDomain) notifySubscribers(ctx context.Context, post *entity.Post, field string) {
	subscriberIDs, err := d.subscriptionRepo.GetPostSubscriberIDs(ctx, post.ID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get post subscribers: %v", err)
		return
	}

	d.fanout.PostUpdated(ctx, post, field, xcontext.RequestUserID(ctx), subscriberIDs)
}

func convertPost(post *entity.Post) model.Post {
	result := model.Post{
		ID:           post.ID,
		AuthorID:     post.AuthorID,
		CategoryID:   post.CategoryID,
		Type:         string(post.Type),
		Title:        post.Title,
		Content:      post.Content,
		Closed:       post.Closed,
		Pinned:       post.PinnedAt != nil,
		CommentCount: post.CommentCount,
		LastReplyAt:  post.LastReplyAt,
		EndTime:      post.EndTime,
	}

	switch post.Type {
	case entity.PostLottery:
		result.Lottery = &model.Lottery{
			PrizeDescription: post.PrizeDescription,
			PrizeIcon:        post.PrizeIcon,
			PrizeCount:       post.PrizeCount,
			PointCost:        post.PointCost,
			StartTime:        post.StartTime,
			Winners:          post.Winners,
		}

	case entity.PostPoll:
		result.Poll = &model.Poll{
			Options:         post.Options,
			Votes:           post.Votes,
			Multiple:        post.Multiple,
			ResultAnnounced: post.ResultAnnounced,
		}

	case entity.PostProposal:
		result.Proposal = &model.Proposal{
			ProposedName:        post.ProposedName,
			ProposalDescription: post.ProposalDescription,
			Quorum:              post.Quorum,
			ApproveThreshold:    post.ApproveThreshold,
			Status:              string(post.ProposalStatus),
			ResultSnapshot:      post.ResultSnapshot,
			RejectReason:        post.RejectReason,
		}
	}

	return result
}

func (d *postDomain) parseEndTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid end time %s", value)
	}

	return &t, nil
}
