// internal/database/comment_repository.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentDocument represents comment data in MongoDB
type CommentDocument struct {
	ID           string    `bson:"_id"`
	PostID       string    `bson:"postId"`
	CommunityID  string    `bson:"communityId"`
	AuthorHandle string    `bson:"authorHandle"`
	Content      string    `bson:"content"`
	CreatedAt    time.Time `bson:"createdAt"`
	LikeCount    int       `bson:"likeCount"`
	LikedBy      []string  `bson:"likedBy"`
	ReplyCount   int       `bson:"replyCount"`
}

func commentDocumentToModel(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}

	postID, err := uuid.Parse(doc.PostID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	communityID, err := uuid.Parse(doc.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID: %v", err)
	}

	return &models.Comment{
		ID:           id,
		PostID:       postID,
		CommunityID:  communityID,
		AuthorHandle: doc.AuthorHandle,
		Content:      doc.Content,
		CreatedAt:    doc.CreatedAt,
		LikeCount:    doc.LikeCount,
		LikedBy:      doc.LikedBy,
		ReplyCount:   doc.ReplyCount,
	}, nil
}

// InsertComment stores a new comment and bumps the parent post's comment
// counter. The counter update runs first and doubles as the existence
// check: if the post was removed concurrently the whole operation fails
// with NOT_FOUND and nothing is written.
func (m *MongoDB) InsertComment(ctx context.Context, comment *models.Comment) error {
	result, err := m.Posts.UpdateOne(
		ctx,
		bson.M{"_id": comment.PostID.String()},
		bson.M{"$inc": bson.M{"commentCount": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to update post comment count: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}

	doc := CommentDocument{
		ID:           comment.ID.String(),
		PostID:       comment.PostID.String(),
		CommunityID:  comment.CommunityID.String(),
		AuthorHandle: comment.AuthorHandle,
		Content:      comment.Content,
		CreatedAt:    comment.CreatedAt,
		LikeCount:    comment.LikeCount,
		LikedBy:      make([]string, 0),
		ReplyCount:   comment.ReplyCount,
	}

	if _, err := m.Comments.InsertOne(ctx, doc); err != nil {
		// Roll the counter back so it keeps matching the live comments.
		if _, decErr := m.Posts.UpdateOne(
			ctx,
			bson.M{"_id": comment.PostID.String()},
			bson.M{"$inc": bson.M{"commentCount": -1}},
		); decErr != nil {
			log.Printf("failed to roll back comment count for post %s: %v", comment.PostID, decErr)
		}
		return fmt.Errorf("failed to insert comment: %v", err)
	}

	return nil
}

// GetComment retrieves a comment by ID
func (m *MongoDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var doc CommentDocument
	err := m.Comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Comment not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %v", err)
	}

	return commentDocumentToModel(&doc)
}

// ListComments retrieves all comments for a post in thread order (oldest
// first, unlike the post feed).
func (m *MongoDB) ListComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := m.Comments.Find(ctx, bson.M{"postId": postID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get post comments: %v", err)
	}
	defer cursor.Close(ctx)

	comments := make([]*models.Comment, 0)
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode comment: %v", err)
		}

		comment, err := commentDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}

	return comments, nil
}

// ToggleCommentLike flips the caller's like on a comment.
func (m *MongoDB) ToggleCommentLike(ctx context.Context, commentID uuid.UUID, handle string) (bool, int, error) {
	liked, count, err := toggleLike(ctx, m.Comments, commentID.String(), handle)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return false, 0, utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
		}
		return false, 0, err
	}
	return liked, count, nil
}

func (m *MongoDB) CountComments(ctx context.Context) (int64, error) {
	return m.Comments.CountDocuments(ctx, bson.M{})
}
