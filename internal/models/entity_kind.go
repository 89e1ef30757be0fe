package models

// EntityKind identifies which level of the content tree an engagement
// operation targets.
type EntityKind string

const (
	KindPost    EntityKind = "post"
	KindComment EntityKind = "comment"
	KindReply   EntityKind = "reply"
)

// Valid reports whether the kind is one of the three content levels.
func (k EntityKind) Valid() bool {
	switch k {
	case KindPost, KindComment, KindReply:
		return true
	}
	return false
}

// LikeResult is the authoritative outcome of a like toggle. Clients that
// applied an optimistic local echo reconcile against these values.
type LikeResult struct {
	Kind      EntityKind `json:"kind"`
	Liked     bool       `json:"liked"`
	LikeCount int        `json:"likeCount"`
}

// ReportResult is the outcome of reporting a post. Applied is false when the
// handle had already reported the post. Removed is true when this report
// crossed the moderation threshold and the post was taken down.
type ReportResult struct {
	Applied     bool `json:"applied"`
	ReportCount int  `json:"reportCount"`
	Removed     bool `json:"removed"`
}

// StatusResponse is a generic success envelope for mutations that have no
// richer payload.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
