package database

import (
	"context"

	"whisper-feed/internal/models"

	"github.com/google/uuid"
)

// Store defines the common interface for database operations. The Mongo
// adapter is the production backend; MemoryStore backs tests and local
// development.
//
// Counter/set mutations (likes, reports, child counts) are single atomic
// updates on the owning document — implementations must never realize them
// as a read followed by a write in caller code.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// Membership methods
	GetMembership(ctx context.Context, userID, communityID uuid.UUID) (*models.Membership, error)
	SaveMembership(ctx context.Context, membership *models.Membership) (created bool, err error)
	DeleteMembership(ctx context.Context, userID, communityID uuid.UUID) (bool, error)
	UpdateCommunityMembers(ctx context.Context, communityID uuid.UUID, delta int) error
	CountMemberships(ctx context.Context) (int64, error)

	// Post methods
	InsertPost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)
	ListPosts(ctx context.Context, communityID uuid.UUID, cursor *PostCursor, limit int) ([]*models.Post, *PostCursor, error)
	TogglePostLike(ctx context.Context, postID uuid.UUID, handle string) (liked bool, likeCount int, err error)
	AddPostReport(ctx context.Context, postID uuid.UUID, handle string) (applied bool, reportCount int, err error)
	DeletePost(ctx context.Context, postID uuid.UUID) (bool, error)
	GetReportedPosts(ctx context.Context, minReports, limit int) ([]*models.Post, error)
	CountPosts(ctx context.Context) (int64, error)

	// Comment methods. InsertComment increments the parent post's comment
	// counter as part of the same logical operation and fails with NOT_FOUND
	// when the post is already gone.
	InsertComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error)
	ToggleCommentLike(ctx context.Context, commentID uuid.UUID, handle string) (liked bool, likeCount int, err error)
	CountComments(ctx context.Context) (int64, error)

	// Reply methods, mirroring the comment contract one level down.
	InsertReply(ctx context.Context, reply *models.Reply) error
	GetReply(ctx context.Context, id uuid.UUID) (*models.Reply, error)
	ListReplies(ctx context.Context, commentID uuid.UUID) ([]*models.Reply, error)
	ToggleReplyLike(ctx context.Context, replyID uuid.UUID, handle string) (liked bool, likeCount int, err error)
	CountReplies(ctx context.Context) (int64, error)
}
