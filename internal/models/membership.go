package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership binds a user to a community through their anonymous handle.
// A user holds a different handle in every community they join.
type Membership struct {
	UserID      uuid.UUID `json:"userId"`
	CommunityID uuid.UUID `json:"communityId"`
	Handle      string    `json:"handle"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Community tracks aggregate state for a community. Communities themselves
// are provisioned elsewhere; we only keep the member counter here.
type Community struct {
	ID      uuid.UUID `json:"id"`
	Members int       `json:"members"`
}
