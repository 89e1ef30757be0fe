package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"whisper-feed/internal/engine/actors"

	"github.com/google/uuid"
)

// CreatePostRequest represents a request to create a new post
type CreatePostRequest struct {
	CommunityID string `json:"communityId"`
	Content     string `json:"content"`
	ImageRef    string `json:"imageRef,omitempty"`
}

// HandlePost handles post creation and single-post lookup.
func (s *Server) HandlePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			userID, ok := s.requireUser(w, r)
			if !ok {
				return
			}

			var req CreatePostRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			communityID, err := uuid.Parse(req.CommunityID)
			if err != nil {
				http.Error(w, "Invalid community ID", http.StatusBadRequest)
				return
			}

			result, ok := s.ask(w, s.Engine.GetPostActor(), &actors.CreatePostMsg{
				UserID:      userID,
				CommunityID: communityID,
				Content:     req.Content,
				ImageRef:    req.ImageRef,
			})
			if !ok {
				return
			}
			respondJSON(w, http.StatusCreated, result)

		case http.MethodGet:
			postID, ok := parseUUIDParam(w, r, "postId")
			if !ok {
				return
			}

			result, ok := s.ask(w, s.Engine.GetPostActor(), &actors.GetPostMsg{PostID: postID})
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleFeed returns one page of a community's posts, newest first. The
// cursor parameter is the opaque token from the previous page.
func (s *Server) HandleFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		communityID, ok := parseUUIDParam(w, r, "communityId")
		if !ok {
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		result, ok := s.ask(w, s.Engine.GetPostActor(), &actors.ListPostsMsg{
			CommunityID: communityID,
			Cursor:      r.URL.Query().Get("cursor"),
			Limit:       limit,
		})
		if !ok {
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}
