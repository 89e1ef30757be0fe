package handlers

import (
	"encoding/json"
	"net/http"

	"whisper-feed/internal/engine/actors"
	"whisper-feed/internal/models"

	"github.com/google/uuid"
)

// ToggleLikeRequest represents a like toggle on a post, comment or reply.
type ToggleLikeRequest struct {
	Kind string `json:"kind"` // "post", "comment" or "reply"
	ID   string `json:"id"`
}

// ReportRequest represents a report filed against a post
type ReportRequest struct {
	PostID string `json:"postId"`
}

// HandleLike toggles the caller's like on any entity kind. The same
// request repeated flips the like back off.
func (s *Server) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		var req ToggleLikeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		kind := models.EntityKind(req.Kind)
		if !kind.Valid() {
			http.Error(w, "Invalid entity kind", http.StatusBadRequest)
			return
		}

		entityID, err := uuid.Parse(req.ID)
		if err != nil {
			http.Error(w, "Invalid entity ID", http.StatusBadRequest)
			return
		}

		var msg interface{}
		switch kind {
		case models.KindPost:
			msg = &actors.TogglePostLikeMsg{UserID: userID, PostID: entityID}
		case models.KindComment:
			msg = &actors.ToggleCommentLikeMsg{UserID: userID, CommentID: entityID}
		case models.KindReply:
			msg = &actors.ToggleReplyLikeMsg{UserID: userID, ReplyID: entityID}
		}

		result, ok := s.ask(w, s.Engine.LikeActorFor(kind), msg)
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandleReport files the caller's report against a post. A post a handle
// already reported is unchanged; crossing the removal threshold deletes
// the post before the response is written.
func (s *Server) HandleReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		var req ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			http.Error(w, "Invalid post ID", http.StatusBadRequest)
			return
		}

		result, ok := s.ask(w, s.Engine.GetModerationActor(), &actors.ReportPostMsg{
			UserID: userID,
			PostID: postID,
		})
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}
