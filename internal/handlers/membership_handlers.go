package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"whisper-feed/internal/engine/actors"

	"github.com/google/uuid"
)

// MembershipRequest represents a request to join or leave a community
type MembershipRequest struct {
	CommunityID string `json:"communityId"`
}

// HandleMembership handles joining, leaving and handle lookup for a
// community. The caller's identity always comes from the session token;
// only the community is named in the request.
func (s *Server) HandleMembership() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.requireUser(w, r)
		if !ok {
			return
		}

		switch r.Method {
		case http.MethodPost:
			var req MembershipRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			communityID, err := uuid.Parse(req.CommunityID)
			if err != nil {
				http.Error(w, "Invalid community ID", http.StatusBadRequest)
				return
			}

			log.Printf("User %s joining community %s", userID, communityID)
			result, ok := s.ask(w, s.Engine.GetMembershipActor(), &actors.JoinCommunityMsg{
				UserID:      userID,
				CommunityID: communityID,
			})
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		case http.MethodDelete:
			communityID, ok := parseUUIDParam(w, r, "communityId")
			if !ok {
				return
			}

			result, ok := s.ask(w, s.Engine.GetMembershipActor(), &actors.LeaveCommunityMsg{
				UserID:      userID,
				CommunityID: communityID,
			})
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		case http.MethodGet:
			communityID, ok := parseUUIDParam(w, r, "communityId")
			if !ok {
				return
			}

			result, ok := s.ask(w, s.Engine.GetMembershipActor(), &actors.GetHandleMsg{
				UserID:      userID,
				CommunityID: communityID,
			})
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
