package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"
)

func seedPost(t *testing.T, store *MemoryStore, communityID uuid.UUID, createdAt time.Time) *models.Post {
	t.Helper()
	post := &models.Post{
		ID:           uuid.New(),
		CommunityID:  communityID,
		AuthorHandle: "brisk-otter-1a2b",
		Content:      "content",
		CreatedAt:    createdAt,
	}
	assert.NoError(t, store.InsertPost(context.Background(), post))
	return post
}

func TestListPostsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	communityID := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	oldest := seedPost(t, store, communityID, base.Add(-2*time.Minute))
	middle := seedPost(t, store, communityID, base.Add(-time.Minute))
	newest := seedPost(t, store, communityID, base)

	// A post in another community must never leak into this feed.
	seedPost(t, store, uuid.New(), base)

	page, next, err := store.ListPosts(context.Background(), communityID, nil, 10)
	assert.NoError(t, err)
	assert.Nil(t, next)
	assert.Len(t, page, 3)
	assert.Equal(t, newest.ID, page[0].ID)
	assert.Equal(t, middle.ID, page[1].ID)
	assert.Equal(t, oldest.ID, page[2].ID)
}

func TestListPostsPaginationIsStableUnderInserts(t *testing.T) {
	store := NewMemoryStore()
	communityID := uuid.New()
	base := time.Now().UTC().Truncate(time.Millisecond)

	for i := 0; i < 5; i++ {
		seedPost(t, store, communityID, base.Add(time.Duration(i)*time.Second))
	}

	firstPage, cursor, err := store.ListPosts(context.Background(), communityID, nil, 3)
	assert.NoError(t, err)
	assert.Len(t, firstPage, 3)
	assert.NotNil(t, cursor)

	// New posts arriving ahead of the reader must not shift the
	// continuation page.
	seedPost(t, store, communityID, base.Add(time.Hour))
	seedPost(t, store, communityID, base.Add(2*time.Hour))

	secondPage, _, err := store.ListPosts(context.Background(), communityID, cursor, 3)
	assert.NoError(t, err)
	assert.Len(t, secondPage, 2)

	seen := map[uuid.UUID]bool{}
	for _, p := range append(firstPage, secondPage...) {
		assert.False(t, seen[p.ID], "post %s returned twice", p.ID)
		seen[p.ID] = true
	}
	for i := 1; i < len(secondPage); i++ {
		assert.False(t, secondPage[i].CreatedAt.After(secondPage[i-1].CreatedAt))
	}
}

func TestTogglePostLikeIsAnInvolution(t *testing.T) {
	store := NewMemoryStore()
	post := seedPost(t, store, uuid.New(), time.Now())
	handle := "quiet-heron-9f3c"

	liked, count, err := store.TogglePostLike(context.Background(), post.ID, handle)
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	liked, count, err = store.TogglePostLike(context.Background(), post.ID, handle)
	assert.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, 0, count)

	stored, err := store.GetPost(context.Background(), post.ID)
	assert.NoError(t, err)
	assert.Empty(t, stored.LikedBy)
	assert.Equal(t, 0, stored.LikeCount)
}

func TestTogglePostLikeConcurrentDistinctHandles(t *testing.T) {
	store := NewMemoryStore()
	post := seedPost(t, store, uuid.New(), time.Now())

	const handles = 32
	var wg sync.WaitGroup
	for i := 0; i < handles; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := store.TogglePostLike(context.Background(), post.ID, fmt.Sprintf("handle-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := store.GetPost(context.Background(), post.ID)
	assert.NoError(t, err)
	assert.Equal(t, handles, stored.LikeCount)
	assert.Len(t, stored.LikedBy, handles)
}

func TestAddPostReportIsIdempotentPerHandle(t *testing.T) {
	store := NewMemoryStore()
	post := seedPost(t, store, uuid.New(), time.Now())
	handle := "sly-badger-0d1e"

	applied, count, err := store.AddPostReport(context.Background(), post.ID, handle)
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, count)

	applied, count, err = store.AddPostReport(context.Background(), post.ID, handle)
	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, count)

	applied, count, err = store.AddPostReport(context.Background(), post.ID, "other-handle")
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 2, count)
}

func TestInsertCommentBumpsPostCounter(t *testing.T) {
	store := NewMemoryStore()
	post := seedPost(t, store, uuid.New(), time.Now())

	comment := &models.Comment{
		ID:           uuid.New(),
		PostID:       post.ID,
		CommunityID:  post.CommunityID,
		AuthorHandle: "brisk-otter-1a2b",
		Content:      "first",
		CreatedAt:    time.Now(),
	}
	assert.NoError(t, store.InsertComment(context.Background(), comment))

	stored, err := store.GetPost(context.Background(), post.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, stored.CommentCount)
}

func TestInsertCommentUnderMissingPost(t *testing.T) {
	store := NewMemoryStore()

	comment := &models.Comment{
		ID:        uuid.New(),
		PostID:    uuid.New(),
		Content:   "orphan",
		CreatedAt: time.Now(),
	}
	err := store.InsertComment(context.Background(), comment)
	assert.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestInsertReplyBumpsCommentCounter(t *testing.T) {
	store := NewMemoryStore()
	post := seedPost(t, store, uuid.New(), time.Now())

	comment := &models.Comment{
		ID:          uuid.New(),
		PostID:      post.ID,
		CommunityID: post.CommunityID,
		Content:     "parent",
		CreatedAt:   time.Now(),
	}
	assert.NoError(t, store.InsertComment(context.Background(), comment))

	reply := &models.Reply{
		ID:          uuid.New(),
		CommentID:   comment.ID,
		CommunityID: post.CommunityID,
		Content:     "child",
		CreatedAt:   time.Now(),
	}
	assert.NoError(t, store.InsertReply(context.Background(), reply))

	stored, err := store.GetComment(context.Background(), comment.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, stored.ReplyCount)

	err = store.InsertReply(context.Background(), &models.Reply{
		ID:        uuid.New(),
		CommentID: uuid.New(),
		Content:   "orphan",
		CreatedAt: time.Now(),
	})
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestDeletePost(t *testing.T) {
	store := NewMemoryStore()
	post := seedPost(t, store, uuid.New(), time.Now())

	removed, err := store.DeletePost(context.Background(), post.ID)
	assert.NoError(t, err)
	assert.True(t, removed)

	_, err = store.GetPost(context.Background(), post.ID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))

	removed, err = store.DeletePost(context.Background(), post.ID)
	assert.NoError(t, err)
	assert.False(t, removed)
}

func TestSaveMembershipFirstWriterWins(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()
	communityID := uuid.New()

	created, err := store.SaveMembership(context.Background(), &models.Membership{
		UserID:      userID,
		CommunityID: communityID,
		Handle:      "first-handle",
		JoinedAt:    time.Now(),
	})
	assert.NoError(t, err)
	assert.True(t, created)

	created, err = store.SaveMembership(context.Background(), &models.Membership{
		UserID:      userID,
		CommunityID: communityID,
		Handle:      "second-handle",
		JoinedAt:    time.Now(),
	})
	assert.NoError(t, err)
	assert.False(t, created)

	stored, err := store.GetMembership(context.Background(), userID, communityID)
	assert.NoError(t, err)
	assert.Equal(t, "first-handle", stored.Handle)
}

func TestGetReportedPostsOrdering(t *testing.T) {
	store := NewMemoryStore()
	communityID := uuid.New()

	low := seedPost(t, store, communityID, time.Now())
	high := seedPost(t, store, communityID, time.Now())

	for i := 0; i < 2; i++ {
		_, _, err := store.AddPostReport(context.Background(), low.ID, fmt.Sprintf("low-%d", i))
		assert.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		_, _, err := store.AddPostReport(context.Background(), high.ID, fmt.Sprintf("high-%d", i))
		assert.NoError(t, err)
	}

	posts, err := store.GetReportedPosts(context.Background(), 1, 10)
	assert.NoError(t, err)
	assert.Len(t, posts, 2)
	assert.Equal(t, high.ID, posts[0].ID)
	assert.Equal(t, low.ID, posts[1].ID)

	posts, err = store.GetReportedPosts(context.Background(), 3, 10)
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, high.ID, posts[0].ID)
}
