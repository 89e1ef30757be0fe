package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"whisper-feed/internal/broker"
	"whisper-feed/internal/database"
	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for ReplyActor
type (
	CreateReplyMsg struct {
		UserID    uuid.UUID `json:"userId"`
		CommentID uuid.UUID `json:"commentId"`
		Content   string    `json:"content"`
	}

	ListRepliesMsg struct {
		CommentID uuid.UUID `json:"commentId"`
	}

	ToggleReplyLikeMsg struct {
		UserID  uuid.UUID `json:"userId"`
		ReplyID uuid.UUID `json:"replyId"`
	}
)

// ReplyActor manages the deepest level of the content tree.
type ReplyActor struct {
	store    database.Store
	registry *broker.Registry
	metrics  *utils.MetricsCollector
}

func NewReplyActor(store database.Store, registry *broker.Registry, metrics *utils.MetricsCollector) actor.Actor {
	return &ReplyActor{
		store:    store,
		registry: registry,
		metrics:  metrics,
	}
}

func (a *ReplyActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ReplyActor started")

	case *actor.Stopping:
		log.Printf("ReplyActor stopping")

	case *CreateReplyMsg:
		a.handleCreateReply(context, msg)

	case *ListRepliesMsg:
		a.handleListReplies(context, msg)

	case *ToggleReplyLikeMsg:
		a.handleToggleLike(context, msg)

	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := a.store.CountReplies(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to count replies", err))
			return
		}
		context.Respond(int(count))

	default:
		log.Printf("ReplyActor: Unknown message type %T", msg)
	}
}

func (a *ReplyActor) handleCreateReply(context actor.Context, msg *CreateReplyMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewValidationError("a reply needs text content"))
		return
	}

	comment, err := a.store.GetComment(ctx, msg.CommentID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to fetch parent comment", err))
		return
	}

	handle, appErr := resolveHandle(ctx, a.store, msg.UserID, comment.CommunityID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	newReply := &models.Reply{
		ID:           uuid.New(),
		CommentID:    msg.CommentID,
		CommunityID:  comment.CommunityID,
		AuthorHandle: handle,
		Content:      msg.Content,
		CreatedAt:    time.Now(),
		LikedBy:      make([]string, 0),
	}

	if err := a.store.InsertReply(ctx, newReply); err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to save reply", err))
		return
	}

	a.registry.Publish(broker.RepliesOf(msg.CommentID))
	// The reply counter is part of the comment list view.
	a.registry.Publish(broker.CommentsOf(comment.PostID))

	a.metrics.AddOperationLatency("create_reply", time.Since(startTime))
	context.Respond(newReply)
}

func (a *ReplyActor) handleListReplies(context actor.Context, msg *ListRepliesMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	replies, err := a.store.ListReplies(ctx, msg.CommentID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to fetch replies", err))
		return
	}

	a.metrics.AddOperationLatency("list_replies", time.Since(startTime))
	context.Respond(replies)
}

func (a *ReplyActor) handleToggleLike(context actor.Context, msg *ToggleReplyLikeMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	reply, err := a.store.GetReply(ctx, msg.ReplyID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to get reply", err))
		return
	}

	handle, appErr := resolveHandle(ctx, a.store, msg.UserID, reply.CommunityID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	liked, likeCount, err := a.store.ToggleReplyLike(ctx, msg.ReplyID, handle)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			context.Respond(appErr)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to toggle reply like", err))
		return
	}

	a.registry.Publish(broker.RepliesOf(reply.CommentID))

	a.metrics.AddOperationLatency("toggle_reply_like", time.Since(startTime))
	context.Respond(&models.LikeResult{
		Kind:      models.KindReply,
		Liked:     liked,
		LikeCount: likeCount,
	})
}
