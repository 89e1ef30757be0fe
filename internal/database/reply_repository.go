// internal/database/reply_repository.go
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

// ReplyDocument represents reply data in MongoDB
type ReplyDocument struct {
	ID           string    `bson:"_id"`
	CommentID    string    `bson:"commentId"`
	CommunityID  string    `bson:"communityId"`
	AuthorHandle string    `bson:"authorHandle"`
	Content      string    `bson:"content"`
	CreatedAt    time.Time `bson:"createdAt"`
	LikeCount    int       `bson:"likeCount"`
	LikedBy      []string  `bson:"likedBy"`
}

func replyDocumentToModel(doc *ReplyDocument) (*models.Reply, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid reply ID: %v", err)
	}

	commentID, err := uuid.Parse(doc.CommentID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}

	communityID, err := uuid.Parse(doc.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID: %v", err)
	}

	return &models.Reply{
		ID:           id,
		CommentID:    commentID,
		CommunityID:  communityID,
		AuthorHandle: doc.AuthorHandle,
		Content:      doc.Content,
		CreatedAt:    doc.CreatedAt,
		LikeCount:    doc.LikeCount,
		LikedBy:      doc.LikedBy,
	}, nil
}

// InsertReply stores a new reply and bumps the parent comment's reply
// counter, with the same existence-check-first contract as InsertComment.
func (m *MongoDB) InsertReply(ctx context.Context, reply *models.Reply) error {
	result, err := m.Comments.UpdateOne(
		ctx,
		bson.M{"_id": reply.CommentID.String()},
		bson.M{"$inc": bson.M{"replyCount": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to update comment reply count: %v", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrNotFound, "Comment not found", nil)
	}

	doc := ReplyDocument{
		ID:           reply.ID.String(),
		CommentID:    reply.CommentID.String(),
		CommunityID:  reply.CommunityID.String(),
		AuthorHandle: reply.AuthorHandle,
		Content:      reply.Content,
		CreatedAt:    reply.CreatedAt,
		LikeCount:    reply.LikeCount,
		LikedBy:      make([]string, 0),
	}

	if _, err := m.Replies.InsertOne(ctx, doc); err != nil {
		if _, decErr := m.Comments.UpdateOne(
			ctx,
			bson.M{"_id": reply.CommentID.String()},
			bson.M{"$inc": bson.M{"replyCount": -1}},
		); decErr != nil {
			log.Printf("failed to roll back reply count for comment %s: %v", reply.CommentID, decErr)
		}
		return fmt.Errorf("failed to insert reply: %v", err)
	}

	return nil
}

// GetReply retrieves a reply by ID
func (m *MongoDB) GetReply(ctx context.Context, id uuid.UUID) (*models.Reply, error) {
	var doc ReplyDocument
	err := m.Replies.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Reply not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reply: %v", err)
	}

	return replyDocumentToModel(&doc)
}

// ListReplies retrieves all replies for a comment, oldest first.
func (m *MongoDB) ListReplies(ctx context.Context, commentID uuid.UUID) ([]*models.Reply, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := m.Replies.Find(ctx, bson.M{"commentId": commentID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment replies: %v", err)
	}
	defer cursor.Close(ctx)

	replies := make([]*models.Reply, 0)
	for cursor.Next(ctx) {
		var doc ReplyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode reply: %v", err)
		}

		reply, err := replyDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		replies = append(replies, reply)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}

	return replies, nil
}

// ToggleReplyLike flips the caller's like on a reply.
func (m *MongoDB) ToggleReplyLike(ctx context.Context, replyID uuid.UUID, handle string) (bool, int, error) {
	liked, count, err := toggleLike(ctx, m.Replies, replyID.String(), handle)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return false, 0, utils.NewAppError(utils.ErrNotFound, "Reply not found", nil)
		}
		return false, 0, err
	}
	return liked, count, nil
}

func (m *MongoDB) CountReplies(ctx context.Context) (int64, error) {
	return m.Replies.CountDocuments(ctx, bson.M{})
}
