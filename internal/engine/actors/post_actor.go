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

// Message types for Post operations
type (
	CreatePostMsg struct {
		UserID      uuid.UUID `json:"userId"`
		CommunityID uuid.UUID `json:"communityId"`
		Content     string    `json:"content"`
		ImageRef    string    `json:"imageRef,omitempty"`
	}

	GetPostMsg struct {
		PostID uuid.UUID `json:"postId"`
	}

	ListPostsMsg struct {
		CommunityID uuid.UUID `json:"communityId"`
		Cursor      string    `json:"cursor,omitempty"`
		Limit       int       `json:"limit"`
	}

	TogglePostLikeMsg struct {
		UserID uuid.UUID `json:"userId"`
		PostID uuid.UUID `json:"postId"`
	}
)

// ListPostsResponse is one page of a community feed plus the opaque token
// for the next page. NextCursor is empty on the last page.
type ListPostsResponse struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// PostActor handles post creation, feed pagination and post likes.
type PostActor struct {
	store    database.Store
	registry *broker.Registry
	metrics  *utils.MetricsCollector
	pageSize int
}

func NewPostActor(store database.Store, registry *broker.Registry, metrics *utils.MetricsCollector, pageSize int) actor.Actor {
	return &PostActor{
		store:    store,
		registry: registry,
		metrics:  metrics,
		pageSize: pageSize,
	}
}

func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("PostActor started")

	case *actor.Stopping:
		log.Printf("PostActor stopping")

	case *CreatePostMsg:
		a.handleCreatePost(context, msg)

	case *GetPostMsg:
		a.handleGetPost(context, msg)

	case *ListPostsMsg:
		a.handleListPosts(context, msg)

	case *TogglePostLikeMsg:
		a.handleToggleLike(context, msg)

	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := a.store.CountPosts(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to count posts", err))
			return
		}
		context.Respond(int(count))

	default:
		log.Printf("PostActor: Unknown message type: %T", msg)
	}
}

func (a *PostActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" && msg.ImageRef == "" {
		context.Respond(utils.NewValidationError("a post needs text content or an image"))
		return
	}

	handle, appErr := resolveHandle(ctx, a.store, msg.UserID, msg.CommunityID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	newPost := &models.Post{
		ID:           uuid.New(),
		CommunityID:  msg.CommunityID,
		AuthorHandle: handle,
		Content:      msg.Content,
		ImageRef:     msg.ImageRef,
		CreatedAt:    time.Now(),
		LikedBy:      make([]string, 0),
		ReportedBy:   make([]string, 0),
	}

	if err := a.store.InsertPost(ctx, newPost); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to save post", err))
		return
	}

	a.registry.Publish(broker.PostsOf(msg.CommunityID))

	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	context.Respond(newPost)
}

func (a *PostActor) handleGetPost(context actor.Context, msg *GetPostMsg) {
	ctx := stdctx.Background()

	post, err := a.store.GetPost(ctx, msg.PostID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to get post", err))
		return
	}

	context.Respond(post)
}

func (a *PostActor) handleListPosts(context actor.Context, msg *ListPostsMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	cursor, err := database.DecodePostCursor(msg.Cursor)
	if err != nil {
		context.Respond(err)
		return
	}

	limit := msg.Limit
	if limit <= 0 || limit > 100 {
		limit = a.pageSize
	}

	posts, next, err := a.store.ListPosts(ctx, msg.CommunityID, cursor, limit)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to list posts", err))
		return
	}

	response := &ListPostsResponse{Posts: posts}
	if next != nil {
		response.NextCursor = next.Encode()
	}

	a.metrics.AddOperationLatency("list_posts", time.Since(startTime))
	context.Respond(response)
}

func (a *PostActor) handleToggleLike(context actor.Context, msg *TogglePostLikeMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.store.GetPost(ctx, msg.PostID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to get post", err))
		return
	}

	handle, appErr := resolveHandle(ctx, a.store, msg.UserID, post.CommunityID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	liked, likeCount, err := a.store.TogglePostLike(ctx, msg.PostID, handle)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			context.Respond(appErr)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to toggle post like", err))
		return
	}

	a.registry.Publish(broker.PostsOf(post.CommunityID))

	a.metrics.AddOperationLatency("toggle_post_like", time.Since(startTime))
	context.Respond(&models.LikeResult{
		Kind:      models.KindPost,
		Liked:     liked,
		LikeCount: likeCount,
	})
}
