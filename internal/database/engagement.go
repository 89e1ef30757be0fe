// internal/database/engagement.go
package database

import (
	"context"
	"fmt"

	"whisper-feed/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// likeFields is the slice of a content document the toggle cares about.
// Posts, comments and replies all carry the same pair.
type likeFields struct {
	LikeCount int      `bson:"likeCount"`
	LikedBy   []string `bson:"likedBy"`
}

// toggleLike flips handle's membership in a document's like set. Each arm is
// one guarded atomic update: the filter only matches when the set is in the
// expected state, and the set mutation and counter increment travel in the
// same update. Two concurrent toggles can therefore never double-count, and
// likeCount always equals the set's cardinality.
func toggleLike(ctx context.Context, coll *mongo.Collection, id, handle string) (bool, int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	// A concurrent toggle from the same handle can make both guarded arms
	// miss in one pass; retry before reporting a conflict.
	for attempt := 0; attempt < 3; attempt++ {
		var doc likeFields

		addFilter := bson.M{"_id": id, "likedBy": bson.M{"$ne": handle}}
		addUpdate := bson.M{
			"$addToSet": bson.M{"likedBy": handle},
			"$inc":      bson.M{"likeCount": 1},
		}
		err := coll.FindOneAndUpdate(ctx, addFilter, addUpdate, opts).Decode(&doc)
		if err == nil {
			return true, doc.LikeCount, nil
		}
		if err != mongo.ErrNoDocuments {
			return false, 0, fmt.Errorf("failed to add like: %v", err)
		}

		removeFilter := bson.M{"_id": id, "likedBy": handle}
		removeUpdate := bson.M{
			"$pull": bson.M{"likedBy": handle},
			"$inc":  bson.M{"likeCount": -1},
		}
		err = coll.FindOneAndUpdate(ctx, removeFilter, removeUpdate, opts).Decode(&doc)
		if err == nil {
			return false, doc.LikeCount, nil
		}
		if err != mongo.ErrNoDocuments {
			return false, 0, fmt.Errorf("failed to remove like: %v", err)
		}

		// Both arms missed: the document is gone, or another toggle from
		// this handle slipped between them.
		if err := coll.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
			return false, 0, utils.NewAppError(utils.ErrNotFound, "entity not found", nil)
		} else if err != nil {
			return false, 0, fmt.Errorf("failed to check entity: %v", err)
		}
	}

	return false, 0, utils.NewAppError(utils.ErrConflict, "like toggle lost a race, re-fetch and retry", nil)
}
