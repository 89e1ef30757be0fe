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

// Message types for CommentActor
type (
	CreateCommentMsg struct {
		UserID  uuid.UUID `json:"userId"`
		PostID  uuid.UUID `json:"postId"`
		Content string    `json:"content"`
	}

	GetCommentMsg struct {
		CommentID uuid.UUID `json:"commentId"`
	}

	ListCommentsMsg struct {
		PostID uuid.UUID `json:"postId"`
	}

	ToggleCommentLikeMsg struct {
		UserID    uuid.UUID `json:"userId"`
		CommentID uuid.UUID `json:"commentId"`
	}
)

// CommentActor manages the middle level of the content tree.
type CommentActor struct {
	store    database.Store
	registry *broker.Registry
	metrics  *utils.MetricsCollector
}

func NewCommentActor(store database.Store, registry *broker.Registry, metrics *utils.MetricsCollector) actor.Actor {
	return &CommentActor{
		store:    store,
		registry: registry,
		metrics:  metrics,
	}
}

func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CommentActor started")

	case *actor.Stopping:
		log.Printf("CommentActor stopping")

	case *CreateCommentMsg:
		a.handleCreateComment(context, msg)

	case *GetCommentMsg:
		a.handleGetComment(context, msg)

	case *ListCommentsMsg:
		a.handleListComments(context, msg)

	case *ToggleCommentLikeMsg:
		a.handleToggleLike(context, msg)

	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := a.store.CountComments(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to count comments", err))
			return
		}
		context.Respond(int(count))

	default:
		log.Printf("CommentActor: Unknown message type %T", msg)
	}
}

func (a *CommentActor) handleCreateComment(context actor.Context, msg *CreateCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewValidationError("a comment needs text content"))
		return
	}

	// The parent post carries the community the membership check runs in.
	post, err := a.store.GetPost(ctx, msg.PostID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to fetch parent post", err))
		return
	}

	handle, appErr := resolveHandle(ctx, a.store, msg.UserID, post.CommunityID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	newComment := &models.Comment{
		ID:           uuid.New(),
		PostID:       msg.PostID,
		CommunityID:  post.CommunityID,
		AuthorHandle: handle,
		Content:      msg.Content,
		CreatedAt:    time.Now(),
		LikedBy:      make([]string, 0),
	}

	// InsertComment re-checks the post and bumps its comment counter; a
	// post deleted between the fetch above and here surfaces as NOT_FOUND.
	if err := a.store.InsertComment(ctx, newComment); err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to save comment", err))
		return
	}

	a.registry.Publish(broker.CommentsOf(msg.PostID))
	// The comment counter is part of the post list view.
	a.registry.Publish(broker.PostsOf(post.CommunityID))

	a.metrics.AddOperationLatency("create_comment", time.Since(startTime))
	context.Respond(newComment)
}

func (a *CommentActor) handleGetComment(context actor.Context, msg *GetCommentMsg) {
	ctx := stdctx.Background()

	comment, err := a.store.GetComment(ctx, msg.CommentID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to get comment", err))
		return
	}

	context.Respond(comment)
}

func (a *CommentActor) handleListComments(context actor.Context, msg *ListCommentsMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	comments, err := a.store.ListComments(ctx, msg.PostID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to fetch comments", err))
		return
	}

	a.metrics.AddOperationLatency("list_comments", time.Since(startTime))
	context.Respond(comments)
}

func (a *CommentActor) handleToggleLike(context actor.Context, msg *ToggleCommentLikeMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	comment, err := a.store.GetComment(ctx, msg.CommentID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to get comment", err))
		return
	}

	handle, appErr := resolveHandle(ctx, a.store, msg.UserID, comment.CommunityID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	liked, likeCount, err := a.store.ToggleCommentLike(ctx, msg.CommentID, handle)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			context.Respond(appErr)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to toggle comment like", err))
		return
	}

	a.registry.Publish(broker.CommentsOf(comment.PostID))

	a.metrics.AddOperationLatency("toggle_comment_like", time.Since(startTime))
	context.Respond(&models.LikeResult{
		Kind:      models.KindComment,
		Liked:     liked,
		LikeCount: likeCount,
	})
}
