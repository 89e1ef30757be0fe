// internal/database/post_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"whisper-feed/internal/models"
	"whisper-feed/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostDocument represents the MongoDB schema for a post.
type PostDocument struct {
	ID           string    `bson:"_id"`
	CommunityID  string    `bson:"communityId"`
	AuthorHandle string    `bson:"authorHandle"`
	Content      string    `bson:"content"`
	ImageRef     string    `bson:"imageRef,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	LikeCount    int       `bson:"likeCount"`
	LikedBy      []string  `bson:"likedBy"`
	CommentCount int       `bson:"commentCount"`
	ReportCount  int       `bson:"reportCount"`
	ReportedBy   []string  `bson:"reportedBy"`
}

func postModelToDocument(post *models.Post) *PostDocument {
	doc := &PostDocument{
		ID:           post.ID.String(),
		CommunityID:  post.CommunityID.String(),
		AuthorHandle: post.AuthorHandle,
		Content:      post.Content,
		ImageRef:     post.ImageRef,
		CreatedAt:    post.CreatedAt,
		LikeCount:    post.LikeCount,
		LikedBy:      post.LikedBy,
		CommentCount: post.CommentCount,
		ReportCount:  post.ReportCount,
		ReportedBy:   post.ReportedBy,
	}
	if doc.LikedBy == nil {
		doc.LikedBy = make([]string, 0)
	}
	if doc.ReportedBy == nil {
		doc.ReportedBy = make([]string, 0)
	}
	return doc
}

func postDocumentToModel(doc *PostDocument) (*models.Post, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid post ID: %v", err)
	}

	communityID, err := uuid.Parse(doc.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID: %v", err)
	}

	return &models.Post{
		ID:           id,
		CommunityID:  communityID,
		AuthorHandle: doc.AuthorHandle,
		Content:      doc.Content,
		ImageRef:     doc.ImageRef,
		CreatedAt:    doc.CreatedAt,
		LikeCount:    doc.LikeCount,
		LikedBy:      doc.LikedBy,
		CommentCount: doc.CommentCount,
		ReportCount:  doc.ReportCount,
		ReportedBy:   doc.ReportedBy,
	}, nil
}

// InsertPost stores a freshly created post. All counters start at zero.
func (m *MongoDB) InsertPost(ctx context.Context, post *models.Post) error {
	_, err := m.Posts.InsertOne(ctx, postModelToDocument(post))
	if err != nil {
		return fmt.Errorf("failed to insert post: %v", err)
	}
	return nil
}

// GetPost retrieves a post by its ID. A post removed by moderation is simply
// gone: callers get NOT_FOUND.
func (m *MongoDB) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc PostDocument
	err := m.Posts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotFound, "Post not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %v", err)
	}

	return postDocumentToModel(&doc)
}

// ListPosts returns one page of a community's feed, newest first. The
// cursor carries the (createdAt, id) pair of the last post on the previous
// page, so concurrent inserts cannot shift or duplicate the continuation.
func (m *MongoDB) ListPosts(ctx context.Context, communityID uuid.UUID, cursor *PostCursor, limit int) ([]*models.Post, *PostCursor, error) {
	filter := bson.M{"communityId": communityID.String()}
	if cursor != nil {
		filter["$or"] = []bson.M{
			{"createdAt": bson.M{"$lt": cursor.LastCreatedAt}},
			{"createdAt": cursor.LastCreatedAt, "_id": bson.M{"$lt": cursor.LastID}},
		}
	}

	opts := options.Find().
		SetSort(bson.D{
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: -1},
		}).
		SetLimit(int64(limit))

	mongoCursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list posts: %v", err)
	}
	defer mongoCursor.Close(ctx)

	posts := make([]*models.Post, 0, limit)
	for mongoCursor.Next(ctx) {
		var doc PostDocument
		if err := mongoCursor.Decode(&doc); err != nil {
			return nil, nil, fmt.Errorf("failed to decode post: %v", err)
		}

		post, err := postDocumentToModel(&doc)
		if err != nil {
			return nil, nil, err
		}
		posts = append(posts, post)
	}

	if err := mongoCursor.Err(); err != nil {
		return nil, nil, fmt.Errorf("cursor iteration failed: %v", err)
	}

	var next *PostCursor
	if len(posts) == limit {
		last := posts[len(posts)-1]
		next = &PostCursor{
			LastCreatedAt: last.CreatedAt,
			LastID:        last.ID.String(),
		}
	}

	return posts, next, nil
}

// TogglePostLike flips the caller's like on a post.
func (m *MongoDB) TogglePostLike(ctx context.Context, postID uuid.UUID, handle string) (bool, int, error) {
	liked, count, err := toggleLike(ctx, m.Posts, postID.String(), handle)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			return false, 0, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
		}
		return false, 0, err
	}
	return liked, count, nil
}

// AddPostReport records a report against a post. The guarded update adds the
// handle to the report set and bumps the counter in one atomic step, so a
// handle that already reported changes nothing. applied is false for such
// repeats; reportCount is the authoritative count either way.
func (m *MongoDB) AddPostReport(ctx context.Context, postID uuid.UUID, handle string) (bool, int, error) {
	filter := bson.M{
		"_id":        postID.String(),
		"reportedBy": bson.M{"$ne": handle},
	}
	update := bson.M{
		"$addToSet": bson.M{"reportedBy": handle},
		"$inc":      bson.M{"reportCount": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc PostDocument
	err := m.Posts.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return true, doc.ReportCount, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, 0, fmt.Errorf("failed to record report: %v", err)
	}

	// Either the post is gone or this handle already reported it.
	err = m.Posts.FindOne(ctx, bson.M{"_id": postID.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return false, 0, utils.NewAppError(utils.ErrNotFound, "Post not found", nil)
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read post after report: %v", err)
	}

	return false, doc.ReportCount, nil
}

// DeletePost hard-deletes a post. Used both by the moderation threshold and
// by administrative removal.
func (m *MongoDB) DeletePost(ctx context.Context, postID uuid.UUID) (bool, error) {
	result, err := m.Posts.DeleteOne(ctx, bson.M{"_id": postID.String()})
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %v", err)
	}
	return result.DeletedCount > 0, nil
}

// GetReportedPosts returns the moderation queue: live posts with at least
// minReports distinct reporters, most-reported first.
func (m *MongoDB) GetReportedPosts(ctx context.Context, minReports, limit int) ([]*models.Post, error) {
	filter := bson.M{"reportCount": bson.M{"$gte": minReports}}
	opts := options.Find().SetSort(bson.D{{Key: "reportCount", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.Posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reported posts: %v", err)
	}
	defer cursor.Close(ctx)

	var posts []*models.Post
	for cursor.Next(ctx) {
		var doc PostDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode post: %v", err)
		}

		post, err := postDocumentToModel(&doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration failed: %v", err)
	}

	return posts, nil
}

func (m *MongoDB) CountPosts(ctx context.Context) (int64, error) {
	return m.Posts.CountDocuments(ctx, bson.M{})
}
