package actors

import (
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"whisper-feed/internal/broker"
	"whisper-feed/internal/database"
	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"
)

var testHandleSecret = []byte("test-handle-secret")

// actorTestEnv wires an actor system to the in-memory store the way the
// server does, minus the HTTP surface.
type actorTestEnv struct {
	system   *actor.ActorSystem
	store    *database.MemoryStore
	registry *broker.Registry
	metrics  *utils.MetricsCollector
}

func newActorTestEnv(t *testing.T) *actorTestEnv {
	t.Helper()
	store := database.NewMemoryStore()
	registry := broker.NewRegistry(store, 20)
	go registry.Run()
	t.Cleanup(registry.Shutdown)

	return &actorTestEnv{
		system:   actor.NewActorSystem(),
		store:    store,
		registry: registry,
		metrics:  utils.NewMetricsCollector(),
	}
}

func (e *actorTestEnv) spawn(producer func() actor.Actor) *actor.PID {
	return e.system.Root.Spawn(actor.PropsFromProducer(producer))
}

func (e *actorTestEnv) ask(t *testing.T, pid *actor.PID, msg interface{}) interface{} {
	t.Helper()
	future := e.system.Root.RequestFuture(pid, msg, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	return result
}

// join creates a membership directly through the actor and returns it.
func (e *actorTestEnv) join(t *testing.T, membershipPID *actor.PID, userID, communityID uuid.UUID) *models.Membership {
	t.Helper()
	result := e.ask(t, membershipPID, &JoinCommunityMsg{UserID: userID, CommunityID: communityID})
	membership, ok := result.(*models.Membership)
	assert.True(t, ok, "expected membership, got %T", result)
	return membership
}
