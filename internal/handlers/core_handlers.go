package handlers

import (
	"io"
	"net/http"
	"time"

	"whisper-feed/internal/engine/actors"
	"whisper-feed/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// HandleHealth handles health check requests
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		counts := map[string]int{}
		counters := []struct {
			name string
			pid  *actor.PID
		}{
			{"memberships", s.Engine.GetMembershipActor()},
			{"posts", s.Engine.GetPostActor()},
			{"comments", s.Engine.GetCommentActor()},
			{"replies", s.Engine.GetReplyActor()},
		}
		for _, c := range counters {
			result, ok := s.ask(w, c.pid, &actors.GetCountsMsg{})
			if !ok {
				return
			}
			count, ok := result.(int)
			if !ok {
				http.Error(w, "Failed to get "+c.name+" count", http.StatusInternalServerError)
				return
			}
			counts[c.name] = count
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "healthy",
			"counts":      counts,
			"connections": s.Hub.ConnectionCount(),
			"metrics":     s.Metrics.Snapshot(),
			"server_time": time.Now(),
		})
	}
}

// HandleImageUpload forwards an image payload to the external image host
// and returns the reference to attach to a post.
func (s *Server) HandleImageUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, ok := s.requireUser(w, r); !ok {
			return
		}

		if !s.Images.Enabled() {
			http.Error(w, "Image uploads are not enabled", http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, 10<<20+1))
		if err != nil {
			http.Error(w, "Failed to read image payload", http.StatusBadRequest)
			return
		}

		contentType := r.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		ref, appErr := s.Images.Upload(r.Context(), contentType, data)
		if appErr != nil {
			http.Error(w, appErr.Error(), utils.AppErrorToHTTPStatus(appErr.Code))
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"imageRef": ref})
	}
}
