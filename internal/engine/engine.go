package engine

import (
	"whisper-feed/internal/broker"
	"whisper-feed/internal/database"
	"whisper-feed/internal/engine/actors"
	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Options carries the feed settings the actors need at spawn time.
type Options struct {
	HandleSecret    []byte
	ReportThreshold int
	PageSize        int
}

// Engine spawns the feed actors and hands out their PIDs. Each actor is its
// own concurrency domain; the engine itself holds no state beyond the PIDs.
type Engine struct {
	membershipActor *actor.PID
	postActor       *actor.PID
	commentActor    *actor.PID
	replyActor      *actor.PID
	moderationActor *actor.PID
}

func NewEngine(system *actor.ActorSystem, store database.Store, registry *broker.Registry, metrics *utils.MetricsCollector, opts Options) *Engine {
	context := system.Root

	membershipProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewMembershipActor(store, opts.HandleSecret, metrics)
	})
	postProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewPostActor(store, registry, metrics, opts.PageSize)
	})
	commentProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(store, registry, metrics)
	})
	replyProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewReplyActor(store, registry, metrics)
	})
	moderationProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewModerationActor(store, registry, metrics, opts.ReportThreshold)
	})

	return &Engine{
		membershipActor: context.Spawn(membershipProps),
		postActor:       context.Spawn(postProps),
		commentActor:    context.Spawn(commentProps),
		replyActor:      context.Spawn(replyProps),
		moderationActor: context.Spawn(moderationProps),
	}
}

// GetMembershipActor returns the PID of the membership actor
func (e *Engine) GetMembershipActor() *actor.PID {
	return e.membershipActor
}

// GetPostActor returns the PID of the post actor
func (e *Engine) GetPostActor() *actor.PID {
	return e.postActor
}

// GetCommentActor returns the PID of the comment actor
func (e *Engine) GetCommentActor() *actor.PID {
	return e.commentActor
}

// GetReplyActor returns the PID of the reply actor
func (e *Engine) GetReplyActor() *actor.PID {
	return e.replyActor
}

// GetModerationActor returns the PID of the moderation actor
func (e *Engine) GetModerationActor() *actor.PID {
	return e.moderationActor
}

// LikeActorFor maps an entity kind to the actor that owns its like toggles.
func (e *Engine) LikeActorFor(kind models.EntityKind) *actor.PID {
	switch kind {
	case models.KindPost:
		return e.postActor
	case models.KindComment:
		return e.commentActor
	case models.KindReply:
		return e.replyActor
	}
	return nil
}
