package actors

import (
	stdctx "context"
	"log"
	"time"

	"whisper-feed/internal/broker"
	"whisper-feed/internal/database"
	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for ModerationActor
type (
	ReportPostMsg struct {
		UserID uuid.UUID `json:"userId"`
		PostID uuid.UUID `json:"postId"`
	}

	GetReportedPostsMsg struct {
		MinReports int `json:"minReports"`
		Limit      int `json:"limit"`
	}

	AdminDeletePostMsg struct {
		PostID uuid.UUID `json:"postId"`
	}
)

// ModerationActor records reports and enforces the removal threshold. A
// post reported by enough distinct handles is deleted synchronously inside
// the report that crossed the line.
type ModerationActor struct {
	store     database.Store
	registry  *broker.Registry
	metrics   *utils.MetricsCollector
	threshold int
}

func NewModerationActor(store database.Store, registry *broker.Registry, metrics *utils.MetricsCollector, threshold int) actor.Actor {
	return &ModerationActor{
		store:     store,
		registry:  registry,
		metrics:   metrics,
		threshold: threshold,
	}
}

func (a *ModerationActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ModerationActor started (threshold: %d reports)", a.threshold)

	case *actor.Stopping:
		log.Printf("ModerationActor stopping")

	case *ReportPostMsg:
		a.handleReportPost(context, msg)

	case *GetReportedPostsMsg:
		a.handleGetReportedPosts(context, msg)

	case *AdminDeletePostMsg:
		a.handleAdminDeletePost(context, msg)

	default:
		log.Printf("ModerationActor: Unknown message type %T", msg)
	}
}

func (a *ModerationActor) handleReportPost(context actor.Context, msg *ReportPostMsg) {
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

	applied, reportCount, err := a.store.AddPostReport(ctx, msg.PostID, handle)
	if err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			context.Respond(appErr)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to record report", err))
		return
	}

	result := &models.ReportResult{
		Applied:     applied,
		ReportCount: reportCount,
	}

	if reportCount >= a.threshold {
		// The report itself already succeeded; a takedown failure is an
		// operational problem, not the reporter's.
		removed, err := a.store.DeletePost(ctx, msg.PostID)
		if err != nil {
			log.Printf("ModerationActor: threshold takedown of post %s failed: %v", msg.PostID, err)
		} else if removed {
			log.Printf("ModerationActor: post %s removed after %d reports", msg.PostID, reportCount)
			result.Removed = true
		}
	}

	a.registry.Publish(broker.PostsOf(post.CommunityID))

	a.metrics.AddOperationLatency("report_post", time.Since(startTime))
	context.Respond(result)
}

func (a *ModerationActor) handleGetReportedPosts(context actor.Context, msg *GetReportedPostsMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	minReports := msg.MinReports
	if minReports < 1 {
		minReports = 1
	}

	posts, err := a.store.GetReportedPosts(ctx, minReports, msg.Limit)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to fetch reported posts", err))
		return
	}

	a.metrics.AddOperationLatency("get_reported_posts", time.Since(startTime))
	context.Respond(posts)
}

func (a *ModerationActor) handleAdminDeletePost(context actor.Context, msg *AdminDeletePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	// Fetch first so the community topic can be refreshed after deletion.
	post, err := a.store.GetPost(ctx, msg.PostID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(err)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to get post", err))
		return
	}

	removed, err := a.store.DeletePost(ctx, msg.PostID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to delete post", err))
		return
	}
	if !removed {
		context.Respond(utils.NewAppError(utils.ErrNotFound, "Post not found", nil))
		return
	}

	a.registry.Publish(broker.PostsOf(post.CommunityID))

	a.metrics.AddOperationLatency("delete_post", time.Since(startTime))
	context.Respond(&models.StatusResponse{Success: true, Message: "Post deleted"})
}
