package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a direct response to a post.
type Comment struct {
	ID           uuid.UUID `json:"id"`
	PostID       uuid.UUID `json:"postId"`
	CommunityID  uuid.UUID `json:"communityId"`
	AuthorHandle string    `json:"authorHandle"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int       `json:"likeCount"`
	LikedBy      []string  `json:"likedBy,omitempty"`
	ReplyCount   int       `json:"replyCount"`
}

// Reply is a response to a comment. Threads end here; replies cannot be
// replied to.
type Reply struct {
	ID           uuid.UUID `json:"id"`
	CommentID    uuid.UUID `json:"commentId"`
	CommunityID  uuid.UUID `json:"communityId"`
	AuthorHandle string    `json:"authorHandle"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int       `json:"likeCount"`
	LikedBy      []string  `json:"likedBy,omitempty"`
}
