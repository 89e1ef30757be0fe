package handlers

import (
	"net/http"
	"strconv"

	"whisper-feed/internal/engine/actors"
)

// HandleModerationQueue returns the most-reported posts for operator
// review, and lets an operator remove a post directly.
func (s *Server) HandleModerationQueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.requireUser(w, r); !ok {
			return
		}

		switch r.Method {
		case http.MethodGet:
			minReports := 1
			if raw := r.URL.Query().Get("minReports"); raw != "" {
				parsed, err := strconv.Atoi(raw)
				if err != nil || parsed < 0 {
					http.Error(w, "Invalid minReports", http.StatusBadRequest)
					return
				}
				minReports = parsed
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

			result, ok := s.ask(w, s.Engine.GetModerationActor(), &actors.GetReportedPostsMsg{
				MinReports: minReports,
				Limit:      limit,
			})
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		case http.MethodDelete:
			postID, ok := parseUUIDParam(w, r, "postId")
			if !ok {
				return
			}

			result, ok := s.ask(w, s.Engine.GetModerationActor(), &actors.AdminDeletePostMsg{PostID: postID})
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
