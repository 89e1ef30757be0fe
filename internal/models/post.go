package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is a top-level entry in a community feed. Authorship is recorded by
// anonymous handle only; the real user ID never appears on content.
type Post struct {
	ID           uuid.UUID `json:"id"`
	CommunityID  uuid.UUID `json:"communityId"`
	AuthorHandle string    `json:"authorHandle"`
	Content      string    `json:"content"`
	ImageRef     string    `json:"imageRef,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LikeCount    int       `json:"likeCount"`
	LikedBy      []string  `json:"likedBy,omitempty"`
	CommentCount int       `json:"commentCount"`
	ReportCount  int       `json:"reportCount"`
	ReportedBy   []string  `json:"-"`
}

// LikedByHandle reports whether the given handle is in the post's like set.
func (p *Post) LikedByHandle(handle string) bool {
	for _, h := range p.LikedBy {
		if h == handle {
			return true
		}
	}
	return false
}
