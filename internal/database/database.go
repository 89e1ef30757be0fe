// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client      *mongo.Client
	Memberships *mongo.Collection
	Communities *mongo.Collection
	Posts       *mongo.Collection
	Comments    *mongo.Collection
	Replies     *mongo.Collection
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Println("Successfully connected to MongoDB!")

	db := client.Database(dbName)
	return &MongoDB{
		Client:      client,
		Memberships: db.Collection("memberships"),
		Communities: db.Collection("communities"),
		Posts:       db.Collection("posts"),
		Comments:    db.Collection("comments"),
		Replies:     db.Collection("replies"),
	}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes every collection depends on: the unique
// membership key, the feed pagination keys, and the moderation queue sort.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.Memberships.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "communityId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create membership index: %v", err)
	}

	_, err = m.Posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "communityId", Value: 1},
				{Key: "createdAt", Value: -1},
				{Key: "_id", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "reportCount", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %v", err)
	}

	_, err = m.Comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "postId", Value: 1},
			{Key: "createdAt", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create comment index: %v", err)
	}

	_, err = m.Replies.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "commentId", Value: 1},
			{Key: "createdAt", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create reply index: %v", err)
	}

	return nil
}
