package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeriveHandleIsDeterministic(t *testing.T) {
	secret := []byte("test-secret")
	userID := uuid.New()
	communityID := uuid.New()

	first, err := DeriveHandle(secret, userID, communityID)
	assert.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := DeriveHandle(secret, userID, communityID)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDeriveHandleDiffersAcrossCommunities(t *testing.T) {
	secret := []byte("test-secret")
	userID := uuid.New()

	handleA, err := DeriveHandle(secret, userID, uuid.New())
	assert.NoError(t, err)

	handleB, err := DeriveHandle(secret, userID, uuid.New())
	assert.NoError(t, err)

	assert.NotEqual(t, handleA, handleB)
}

func TestDeriveHandleDependsOnSecret(t *testing.T) {
	userID := uuid.New()
	communityID := uuid.New()

	handleA, err := DeriveHandle([]byte("secret-one"), userID, communityID)
	assert.NoError(t, err)

	handleB, err := DeriveHandle([]byte("secret-two"), userID, communityID)
	assert.NoError(t, err)

	assert.NotEqual(t, handleA, handleB)
}

func TestDeriveHandleDiffersAcrossUsers(t *testing.T) {
	secret := []byte("test-secret")
	communityID := uuid.New()

	handleA, err := DeriveHandle(secret, uuid.New(), communityID)
	assert.NoError(t, err)

	handleB, err := DeriveHandle(secret, uuid.New(), communityID)
	assert.NoError(t, err)

	assert.NotEqual(t, handleA, handleB)
}
