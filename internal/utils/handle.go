package utils

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var handleAdjectives = []string{
	"Amber", "Brisk", "Cedar", "Dusky", "Ember",
	"Frost", "Gilded", "Hollow", "Ivory", "Jade",
	"Lunar", "Misty", "Noble", "Ochre", "Pale",
	"Quiet", "Rusty", "Silent", "Tidal", "Velvet",
}

var handleAnimals = []string{
	"Gator", "Heron", "Ibis", "Lynx", "Marmot",
	"Newt", "Osprey", "Pike", "Raven", "Skink",
	"Tern", "Urchin", "Vole", "Wren", "Yak",
	"Badger", "Cicada", "Drake", "Egret", "Finch",
}

// DeriveHandle maps a (user, community) pair to its anonymous handle.
//
// The handle is a keyed blake2b digest of the pair, rendered as an
// adjective-animal pseudonym with a short hex tail. The same pair always
// derives the same handle, so concurrent joins agree without coordination,
// while different communities see unrelated handles for the same user.
// Without the server secret the digest is not computable, so a handle
// cannot be linked back to a user ID or to the user's handles elsewhere.
func DeriveHandle(secret []byte, userID, communityID uuid.UUID) (string, error) {
	h, err := blake2b.New256(secret)
	if err != nil {
		return "", fmt.Errorf("failed to initialize handle digest: %v", err)
	}
	h.Write(userID[:])
	h.Write(communityID[:])
	sum := h.Sum(nil)

	adjective := handleAdjectives[binary.BigEndian.Uint32(sum[0:4])%uint32(len(handleAdjectives))]
	animal := handleAnimals[binary.BigEndian.Uint32(sum[4:8])%uint32(len(handleAnimals))]
	tail := hex.EncodeToString(sum[8:12])

	return fmt.Sprintf("%s%s-%s", adjective, animal, tail), nil
}
