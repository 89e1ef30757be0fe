package database

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"whisper-feed/internal/utils"
)

// PostCursor marks the last post a page ended on. Encoding the (createdAt,
// id) pair instead of an offset keeps continuation pages gap-free and
// duplicate-free even while new posts are being inserted ahead of the
// reader.
type PostCursor struct {
	LastCreatedAt time.Time `json:"lastCreatedAt"`
	LastID        string    `json:"lastId"`
}

// Encode renders the cursor as an opaque token for clients.
func (c *PostCursor) Encode() string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodePostCursor parses a client-supplied cursor token. An empty token
// means the first page.
func DecodePostCursor(token string) (*PostCursor, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "malformed cursor", err)
	}

	var cursor PostCursor
	if err := json.Unmarshal(raw, &cursor); err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "malformed cursor", err)
	}
	if cursor.LastCreatedAt.IsZero() || cursor.LastID == "" {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "malformed cursor", nil)
	}

	return &cursor, nil
}
