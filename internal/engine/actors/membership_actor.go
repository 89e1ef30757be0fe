package actors

import (
	stdctx "context"
	"log"
	"time"

	"whisper-feed/internal/database"
	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for membership operations
type (
	JoinCommunityMsg struct {
		UserID      uuid.UUID `json:"userId"`
		CommunityID uuid.UUID `json:"communityId"`
	}

	LeaveCommunityMsg struct {
		UserID      uuid.UUID `json:"userId"`
		CommunityID uuid.UUID `json:"communityId"`
	}

	GetHandleMsg struct {
		UserID      uuid.UUID `json:"userId"`
		CommunityID uuid.UUID `json:"communityId"`
	}

	GetCountsMsg struct{}
)

// MembershipActor owns the mapping from (user, community) to anonymous
// handle. It is the only component that ever sees both sides of that
// mapping; everything downstream works with handles alone.
type MembershipActor struct {
	store        database.Store
	handleSecret []byte
	metrics      *utils.MetricsCollector
}

func NewMembershipActor(store database.Store, handleSecret []byte, metrics *utils.MetricsCollector) actor.Actor {
	return &MembershipActor{
		store:        store,
		handleSecret: handleSecret,
		metrics:      metrics,
	}
}

func (a *MembershipActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("MembershipActor started")

	case *actor.Stopping:
		log.Printf("MembershipActor stopping")

	case *JoinCommunityMsg:
		a.handleJoin(context, msg)

	case *LeaveCommunityMsg:
		a.handleLeave(context, msg)

	case *GetHandleMsg:
		a.handleGetHandle(context, msg)

	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := a.store.CountMemberships(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to count memberships", err))
			return
		}
		context.Respond(int(count))

	default:
		log.Printf("MembershipActor: Unknown message type: %T", msg)
	}
}

// handleJoin is idempotent: a second join returns the existing membership
// without minting anything. Because the handle is derived rather than
// random, two racing joins for the same pair derive the same handle and the
// unique index collapses them into one membership.
func (a *MembershipActor) handleJoin(context actor.Context, msg *JoinCommunityMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	existing, err := a.store.GetMembership(ctx, msg.UserID, msg.CommunityID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to look up membership", err))
		return
	}
	if existing != nil {
		context.Respond(existing)
		return
	}

	handle, err := utils.DeriveHandle(a.handleSecret, msg.UserID, msg.CommunityID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to derive handle", err))
		return
	}

	membership := &models.Membership{
		UserID:      msg.UserID,
		CommunityID: msg.CommunityID,
		Handle:      handle,
		JoinedAt:    time.Now(),
	}

	created, err := a.store.SaveMembership(ctx, membership)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to save membership", err))
		return
	}

	if !created {
		// Lost a race against a concurrent join; the stored membership wins.
		stored, err := a.store.GetMembership(ctx, msg.UserID, msg.CommunityID)
		if err != nil || stored == nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to re-read membership", err))
			return
		}
		context.Respond(stored)
		return
	}

	if err := a.store.UpdateCommunityMembers(ctx, msg.CommunityID, 1); err != nil {
		log.Printf("failed to bump member count for community %s: %v", msg.CommunityID, err)
	}

	a.metrics.AddOperationLatency("join_community", time.Since(startTime))
	context.Respond(membership)
}

func (a *MembershipActor) handleLeave(context actor.Context, msg *LeaveCommunityMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	removed, err := a.store.DeleteMembership(ctx, msg.UserID, msg.CommunityID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to delete membership", err))
		return
	}

	if removed {
		if err := a.store.UpdateCommunityMembers(ctx, msg.CommunityID, -1); err != nil {
			log.Printf("failed to drop member count for community %s: %v", msg.CommunityID, err)
		}
	}

	a.metrics.AddOperationLatency("leave_community", time.Since(startTime))
	context.Respond(&models.StatusResponse{Success: removed})
}

func (a *MembershipActor) handleGetHandle(context actor.Context, msg *GetHandleMsg) {
	ctx := stdctx.Background()

	membership, err := a.store.GetMembership(ctx, msg.UserID, msg.CommunityID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "failed to look up membership", err))
		return
	}
	if membership == nil {
		context.Respond(utils.NewNotMemberError(msg.CommunityID.String()))
		return
	}

	context.Respond(membership)
}

// resolveHandle gates content and engagement operations: it maps the acting
// user to their handle in the community, or reports NOT_MEMBER.
func resolveHandle(ctx stdctx.Context, store database.Store, userID, communityID uuid.UUID) (string, *utils.AppError) {
	membership, err := store.GetMembership(ctx, userID, communityID)
	if err != nil {
		return "", utils.NewAppError(utils.ErrDatabase, "failed to look up membership", err)
	}
	if membership == nil {
		return "", utils.NewNotMemberError(communityID.String())
	}
	return membership.Handle, nil
}
