package actors

import (
	"context"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"
)

func seedMembership(t *testing.T, env *actorTestEnv, userID, communityID uuid.UUID, handle string) {
	t.Helper()
	created, err := env.store.SaveMembership(context.Background(), &models.Membership{
		UserID:      userID,
		CommunityID: communityID,
		Handle:      handle,
		JoinedAt:    time.Now(),
	})
	assert.NoError(t, err)
	assert.True(t, created)
}

func TestCreatePostRequiresMembership(t *testing.T) {
	env := newActorTestEnv(t)
	pid := env.spawn(func() actor.Actor {
		return NewPostActor(env.store, env.registry, env.metrics, 20)
	})

	result := env.ask(t, pid, &CreatePostMsg{
		UserID:      uuid.New(),
		CommunityID: uuid.New(),
		Content:     "hello",
	})

	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok, "expected error, got %T", result)
	assert.Equal(t, utils.ErrNotMember, appErr.Code)
}

func TestCreatePostStampsAuthorHandle(t *testing.T) {
	env := newActorTestEnv(t)
	pid := env.spawn(func() actor.Actor {
		return NewPostActor(env.store, env.registry, env.metrics, 20)
	})

	userID := uuid.New()
	communityID := uuid.New()
	seedMembership(t, env, userID, communityID, "brisk-otter-1a2b")

	result := env.ask(t, pid, &CreatePostMsg{
		UserID:      userID,
		CommunityID: communityID,
		Content:     "first post",
	})

	post, ok := result.(*models.Post)
	assert.True(t, ok, "expected post, got %T", result)
	assert.Equal(t, "brisk-otter-1a2b", post.AuthorHandle)
	assert.Equal(t, communityID, post.CommunityID)
	assert.NotEqual(t, uuid.Nil, post.ID)
	assert.Zero(t, post.LikeCount)
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	env := newActorTestEnv(t)
	pid := env.spawn(func() actor.Actor {
		return NewPostActor(env.store, env.registry, env.metrics, 20)
	})

	userID := uuid.New()
	communityID := uuid.New()
	seedMembership(t, env, userID, communityID, "brisk-otter-1a2b")

	result := env.ask(t, pid, &CreatePostMsg{
		UserID:      userID,
		CommunityID: communityID,
		Content:     "   ",
	})

	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestCreatePostAllowsImageOnly(t *testing.T) {
	env := newActorTestEnv(t)
	pid := env.spawn(func() actor.Actor {
		return NewPostActor(env.store, env.registry, env.metrics, 20)
	})

	userID := uuid.New()
	communityID := uuid.New()
	seedMembership(t, env, userID, communityID, "brisk-otter-1a2b")

	result := env.ask(t, pid, &CreatePostMsg{
		UserID:      userID,
		CommunityID: communityID,
		ImageRef:    "https://images.example/abc123",
	})

	post, ok := result.(*models.Post)
	assert.True(t, ok, "expected post, got %T", result)
	assert.Equal(t, "https://images.example/abc123", post.ImageRef)
}

func TestListPostsPagination(t *testing.T) {
	env := newActorTestEnv(t)
	pid := env.spawn(func() actor.Actor {
		return NewPostActor(env.store, env.registry, env.metrics, 20)
	})

	userID := uuid.New()
	communityID := uuid.New()
	seedMembership(t, env, userID, communityID, "brisk-otter-1a2b")

	for i := 0; i < 5; i++ {
		result := env.ask(t, pid, &CreatePostMsg{
			UserID:      userID,
			CommunityID: communityID,
			Content:     "post",
		})
		_, ok := result.(*models.Post)
		assert.True(t, ok)
	}

	result := env.ask(t, pid, &ListPostsMsg{CommunityID: communityID, Limit: 3})
	firstPage := result.(*ListPostsResponse)
	assert.Len(t, firstPage.Posts, 3)
	assert.NotEmpty(t, firstPage.NextCursor)

	result = env.ask(t, pid, &ListPostsMsg{
		CommunityID: communityID,
		Cursor:      firstPage.NextCursor,
		Limit:       3,
	})
	secondPage := result.(*ListPostsResponse)
	assert.Len(t, secondPage.Posts, 2)

	seen := map[uuid.UUID]bool{}
	for _, p := range append(firstPage.Posts, secondPage.Posts...) {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestListPostsRejectsMalformedCursor(t *testing.T) {
	env := newActorTestEnv(t)
	pid := env.spawn(func() actor.Actor {
		return NewPostActor(env.store, env.registry, env.metrics, 20)
	})

	result := env.ask(t, pid, &ListPostsMsg{
		CommunityID: uuid.New(),
		Cursor:      "not a cursor !!!",
		Limit:       3,
	})

	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)
}

func TestTogglePostLikeRoundTrip(t *testing.T) {
	env := newActorTestEnv(t)
	pid := env.spawn(func() actor.Actor {
		return NewPostActor(env.store, env.registry, env.metrics, 20)
	})

	author := uuid.New()
	liker := uuid.New()
	communityID := uuid.New()
	seedMembership(t, env, author, communityID, "brisk-otter-1a2b")
	seedMembership(t, env, liker, communityID, "quiet-heron-9f3c")

	created := env.ask(t, pid, &CreatePostMsg{
		UserID:      author,
		CommunityID: communityID,
		Content:     "like me",
	}).(*models.Post)

	result := env.ask(t, pid, &TogglePostLikeMsg{UserID: liker, PostID: created.ID})
	like := result.(*models.LikeResult)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)
	assert.Equal(t, models.KindPost, like.Kind)

	result = env.ask(t, pid, &TogglePostLikeMsg{UserID: liker, PostID: created.ID})
	like = result.(*models.LikeResult)
	assert.False(t, like.Liked)
	assert.Equal(t, 0, like.LikeCount)
}

func TestTogglePostLikeRequiresMembership(t *testing.T) {
	env := newActorTestEnv(t)
	pid := env.spawn(func() actor.Actor {
		return NewPostActor(env.store, env.registry, env.metrics, 20)
	})

	author := uuid.New()
	communityID := uuid.New()
	seedMembership(t, env, author, communityID, "brisk-otter-1a2b")

	created := env.ask(t, pid, &CreatePostMsg{
		UserID:      author,
		CommunityID: communityID,
		Content:     "like me",
	}).(*models.Post)

	result := env.ask(t, pid, &TogglePostLikeMsg{UserID: uuid.New(), PostID: created.ID})
	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrNotMember, appErr.Code)
}
