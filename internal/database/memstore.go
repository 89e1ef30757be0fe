// internal/database/memstore.go
package database

import (
	"context"
	"sort"
	"sync"

	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"

	"github.com/google/uuid"
)

type membershipKey struct {
	userID      uuid.UUID
	communityID uuid.UUID
}

// MemoryStore is an in-process Store used for tests and local development.
// A single mutex stands in for MongoDB's per-document atomicity: every
// counter/set mutation happens under the lock, so the Store contract holds
// under concurrent callers.
type MemoryStore struct {
	mu          sync.Mutex
	memberships map[membershipKey]*models.Membership
	communities map[uuid.UUID]*models.Community
	posts       map[uuid.UUID]*models.Post
	comments    map[uuid.UUID]*models.Comment
	replies     map[uuid.UUID]*models.Reply
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		memberships: make(map[membershipKey]*models.Membership),
		communities: make(map[uuid.UUID]*models.Community),
		posts:       make(map[uuid.UUID]*models.Post),
		comments:    make(map[uuid.UUID]*models.Comment),
		replies:     make(map[uuid.UUID]*models.Reply),
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) GetMembership(ctx context.Context, userID, communityID uuid.UUID) (*models.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.memberships[membershipKey{userID, communityID}]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (s *MemoryStore) SaveMembership(ctx context.Context, membership *models.Membership) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := membershipKey{membership.UserID, membership.CommunityID}
	if _, exists := s.memberships[key]; exists {
		return false, nil
	}

	copied := *membership
	s.memberships[key] = &copied
	return true, nil
}

func (s *MemoryStore) DeleteMembership(ctx context.Context, userID, communityID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := membershipKey{userID, communityID}
	if _, exists := s.memberships[key]; !exists {
		return false, nil
	}
	delete(s.memberships, key)
	return true, nil
}

func (s *MemoryStore) UpdateCommunityMembers(ctx context.Context, communityID uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	community, ok := s.communities[communityID]
	if !ok {
		community = &models.Community{ID: communityID}
		s.communities[communityID] = community
	}
	community.Members += delta
	return nil
}

func (s *MemoryStore) CountMemberships(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.memberships)), nil
}

func (s *MemoryStore) InsertPost(ctx context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := clonePost(post)
	s.posts[post.ID] = copied
	return nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	return clonePost(post), nil
}

func (s *MemoryStore) ListPosts(ctx context.Context, communityID uuid.UUID, cursor *PostCursor, limit int) ([]*models.Post, *PostCursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*models.Post, 0)
	for _, post := range s.posts {
		if post.CommunityID == communityID {
			all = append(all, post)
		}
	}

	// Newest first, id as tie-break, matching the Mongo sort.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})

	page := make([]*models.Post, 0, limit)
	for _, post := range all {
		if cursor != nil {
			after := post.CreatedAt.After(cursor.LastCreatedAt) ||
				(post.CreatedAt.Equal(cursor.LastCreatedAt) && post.ID.String() >= cursor.LastID)
			if after {
				continue
			}
		}
		page = append(page, clonePost(post))
		if len(page) == limit {
			break
		}
	}

	var next *PostCursor
	if len(page) == limit {
		last := page[len(page)-1]
		next = &PostCursor{LastCreatedAt: last.CreatedAt, LastID: last.ID.String()}
	}

	return page, next, nil
}

func (s *MemoryStore) TogglePostLike(ctx context.Context, postID uuid.UUID, handle string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return false, 0, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}

	liked := toggleHandle(&post.LikedBy, handle)
	if liked {
		post.LikeCount++
	} else {
		post.LikeCount--
	}
	return liked, post.LikeCount, nil
}

func (s *MemoryStore) AddPostReport(ctx context.Context, postID uuid.UUID, handle string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return false, 0, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}

	for _, h := range post.ReportedBy {
		if h == handle {
			return false, post.ReportCount, nil
		}
	}

	post.ReportedBy = append(post.ReportedBy, handle)
	post.ReportCount++
	return true, post.ReportCount, nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, postID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[postID]; !ok {
		return false, nil
	}
	delete(s.posts, postID)
	return true, nil
}

func (s *MemoryStore) GetReportedPosts(ctx context.Context, minReports, limit int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var posts []*models.Post
	for _, post := range s.posts {
		if post.ReportCount >= minReports {
			posts = append(posts, clonePost(post))
		}
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ReportCount > posts[j].ReportCount
	})

	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (s *MemoryStore) CountPosts(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.posts)), nil
}

func (s *MemoryStore) InsertComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[comment.PostID]
	if !ok {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	post.CommentCount++

	copied := *comment
	copied.LikedBy = append([]string(nil), comment.LikedBy...)
	s.comments[comment.ID] = &copied
	return nil
}

func (s *MemoryStore) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	copied := *comment
	copied.LikedBy = append([]string(nil), comment.LikedBy...)
	return &copied, nil
}

func (s *MemoryStore) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := make([]*models.Comment, 0)
	for _, comment := range s.comments {
		if comment.PostID == postID {
			copied := *comment
			copied.LikedBy = append([]string(nil), comment.LikedBy...)
			comments = append(comments, &copied)
		}
	}

	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID.String() < comments[j].ID.String()
	})

	return comments, nil
}

func (s *MemoryStore) ToggleCommentLike(ctx context.Context, commentID uuid.UUID, handle string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[commentID]
	if !ok {
		return false, 0, utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}

	liked := toggleHandle(&comment.LikedBy, handle)
	if liked {
		comment.LikeCount++
	} else {
		comment.LikeCount--
	}
	return liked, comment.LikeCount, nil
}

func (s *MemoryStore) CountComments(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.comments)), nil
}

func (s *MemoryStore) InsertReply(ctx context.Context, reply *models.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[reply.CommentID]
	if !ok {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}
	comment.ReplyCount++

	copied := *reply
	copied.LikedBy = append([]string(nil), reply.LikedBy...)
	s.replies[reply.ID] = &copied
	return nil
}

func (s *MemoryStore) GetReply(ctx context.Context, id uuid.UUID) (*models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, ok := s.replies[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNotFound, "Reply not found", nil)
	}
	copied := *reply
	copied.LikedBy = append([]string(nil), reply.LikedBy...)
	return &copied, nil
}

func (s *MemoryStore) ListReplies(ctx context.Context, commentID uuid.UUID) ([]*models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	replies := make([]*models.Reply, 0)
	for _, reply := range s.replies {
		if reply.CommentID == commentID {
			copied := *reply
			copied.LikedBy = append([]string(nil), reply.LikedBy...)
			replies = append(replies, &copied)
		}
	}

	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID.String() < replies[j].ID.String()
	})

	return replies, nil
}

func (s *MemoryStore) ToggleReplyLike(ctx context.Context, replyID uuid.UUID, handle string) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, ok := s.replies[replyID]
	if !ok {
		return false, 0, utils.NewAppError(utils.ErrNotFound, "Reply not found", nil)
	}

	liked := toggleHandle(&reply.LikedBy, handle)
	if liked {
		reply.LikeCount++
	} else {
		reply.LikeCount--
	}
	return liked, reply.LikeCount, nil
}

func (s *MemoryStore) CountReplies(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.replies)), nil
}

func clonePost(post *models.Post) *models.Post {
	copied := *post
	copied.LikedBy = append([]string(nil), post.LikedBy...)
	copied.ReportedBy = append([]string(nil), post.ReportedBy...)
	return &copied
}

// toggleHandle flips handle's presence in the set and reports the new state.
func toggleHandle(set *[]string, handle string) bool {
	for i, h := range *set {
		if h == handle {
			*set = append((*set)[:i], (*set)[i+1:]...)
			return false
		}
	}
	*set = append(*set, handle)
	return true
}
