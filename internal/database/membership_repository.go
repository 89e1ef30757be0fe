// internal/database/membership_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"whisper-feed/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MembershipDocument represents the MongoDB schema for a membership.
type MembershipDocument struct {
	UserID      string    `bson:"userId"`
	CommunityID string    `bson:"communityId"`
	Handle      string    `bson:"handle"`
	JoinedAt    time.Time `bson:"joinedAt"`
}

func membershipDocumentToModel(doc *MembershipDocument) (*models.Membership, error) {
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	communityID, err := uuid.Parse(doc.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("invalid community ID: %v", err)
	}

	return &models.Membership{
		UserID:      userID,
		CommunityID: communityID,
		Handle:      doc.Handle,
		JoinedAt:    doc.JoinedAt,
	}, nil
}

// GetMembership looks up a membership by its (user, community) key. A nil
// result with a nil error means no membership exists.
func (m *MongoDB) GetMembership(ctx context.Context, userID, communityID uuid.UUID) (*models.Membership, error) {
	var doc MembershipDocument
	err := m.Memberships.FindOne(ctx, bson.M{
		"userId":      userID.String(),
		"communityId": communityID.String(),
	}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %v", err)
	}

	return membershipDocumentToModel(&doc)
}

// SaveMembership inserts a membership. The unique (userId, communityId)
// index makes racing joins converge: the loser sees a duplicate key and
// reports created=false.
func (m *MongoDB) SaveMembership(ctx context.Context, membership *models.Membership) (bool, error) {
	doc := MembershipDocument{
		UserID:      membership.UserID.String(),
		CommunityID: membership.CommunityID.String(),
		Handle:      membership.Handle,
		JoinedAt:    membership.JoinedAt,
	}

	_, err := m.Memberships.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to save membership: %v", err)
	}

	return true, nil
}

// DeleteMembership removes a membership; returns false if none existed.
// Previously authored content keeps its handle attribution.
func (m *MongoDB) DeleteMembership(ctx context.Context, userID, communityID uuid.UUID) (bool, error) {
	result, err := m.Memberships.DeleteOne(ctx, bson.M{
		"userId":      userID.String(),
		"communityId": communityID.String(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete membership: %v", err)
	}

	return result.DeletedCount > 0, nil
}

// UpdateCommunityMembers adjusts the member counter for a community,
// creating the counter document on first join.
func (m *MongoDB) UpdateCommunityMembers(ctx context.Context, communityID uuid.UUID, delta int) error {
	opts := options.Update().SetUpsert(true)
	_, err := m.Communities.UpdateOne(
		ctx,
		bson.M{"_id": communityID.String()},
		bson.M{"$inc": bson.M{"members": delta}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("failed to update community member count: %v", err)
	}

	return nil
}

func (m *MongoDB) CountMemberships(ctx context.Context) (int64, error) {
	return m.Memberships.CountDocuments(ctx, bson.M{})
}
