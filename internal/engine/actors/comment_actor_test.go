package actors

import (
	"context"
	"testing"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"
)

type commentTestFixture struct {
	env        *actorTestEnv
	postPID    *actor.PID
	commentPID *actor.PID

	author      uuid.UUID
	communityID uuid.UUID
	post        *models.Post
}

func newCommentFixture(t *testing.T) *commentTestFixture {
	t.Helper()
	env := newActorTestEnv(t)

	f := &commentTestFixture{
		env: env,
		postPID: env.spawn(func() actor.Actor {
			return NewPostActor(env.store, env.registry, env.metrics, 20)
		}),
		commentPID: env.spawn(func() actor.Actor {
			return NewCommentActor(env.store, env.registry, env.metrics)
		}),
		author:      uuid.New(),
		communityID: uuid.New(),
	}

	seedMembership(t, env, f.author, f.communityID, "brisk-otter-1a2b")
	f.post = env.ask(t, f.postPID, &CreatePostMsg{
		UserID:      f.author,
		CommunityID: f.communityID,
		Content:     "parent post",
	}).(*models.Post)

	return f
}

func TestCreateCommentInheritsCommunityFromPost(t *testing.T) {
	f := newCommentFixture(t)

	result := f.env.ask(t, f.commentPID, &CreateCommentMsg{
		UserID:  f.author,
		PostID:  f.post.ID,
		Content: "first comment",
	})

	comment, ok := result.(*models.Comment)
	assert.True(t, ok, "expected comment, got %T", result)
	assert.Equal(t, f.post.ID, comment.PostID)
	assert.Equal(t, f.communityID, comment.CommunityID)
	assert.Equal(t, "brisk-otter-1a2b", comment.AuthorHandle)
}

func TestCreateCommentBumpsPostCounter(t *testing.T) {
	f := newCommentFixture(t)

	for i := 0; i < 3; i++ {
		result := f.env.ask(t, f.commentPID, &CreateCommentMsg{
			UserID:  f.author,
			PostID:  f.post.ID,
			Content: "comment",
		})
		_, ok := result.(*models.Comment)
		assert.True(t, ok)
	}

	stored, err := f.env.store.GetPost(context.Background(), f.post.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, stored.CommentCount)
}

func TestCreateCommentUnderMissingPost(t *testing.T) {
	f := newCommentFixture(t)

	result := f.env.ask(t, f.commentPID, &CreateCommentMsg{
		UserID:  f.author,
		PostID:  uuid.New(),
		Content: "orphan",
	})

	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestCreateCommentRequiresMembership(t *testing.T) {
	f := newCommentFixture(t)

	result := f.env.ask(t, f.commentPID, &CreateCommentMsg{
		UserID:  uuid.New(),
		PostID:  f.post.ID,
		Content: "outsider",
	})

	appErr, ok := result.(*utils.AppError)
	assert.True(t, ok)
	assert.Equal(t, utils.ErrNotMember, appErr.Code)
}

func TestListCommentsOldestFirst(t *testing.T) {
	f := newCommentFixture(t)

	for i := 0; i < 3; i++ {
		result := f.env.ask(t, f.commentPID, &CreateCommentMsg{
			UserID:  f.author,
			PostID:  f.post.ID,
			Content: "comment",
		})
		_, ok := result.(*models.Comment)
		assert.True(t, ok)
	}

	result := f.env.ask(t, f.commentPID, &ListCommentsMsg{PostID: f.post.ID})
	comments := result.([]*models.Comment)
	assert.Len(t, comments, 3)
	for i := 1; i < len(comments); i++ {
		assert.False(t, comments[i].CreatedAt.Before(comments[i-1].CreatedAt))
	}
}

func TestToggleCommentLike(t *testing.T) {
	f := newCommentFixture(t)

	comment := f.env.ask(t, f.commentPID, &CreateCommentMsg{
		UserID:  f.author,
		PostID:  f.post.ID,
		Content: "like me",
	}).(*models.Comment)

	liker := uuid.New()
	seedMembership(t, f.env, liker, f.communityID, "quiet-heron-9f3c")

	result := f.env.ask(t, f.commentPID, &ToggleCommentLikeMsg{UserID: liker, CommentID: comment.ID})
	like := result.(*models.LikeResult)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)
	assert.Equal(t, models.KindComment, like.Kind)

	result = f.env.ask(t, f.commentPID, &ToggleCommentLikeMsg{UserID: liker, CommentID: comment.ID})
	like = result.(*models.LikeResult)
	assert.False(t, like.Liked)
	assert.Equal(t, 0, like.LikeCount)
}
