package handlers

import (
	"encoding/json"
	"net/http"

	"whisper-feed/internal/engine/actors"

	"github.com/google/uuid"
)

// CreateCommentRequest represents a request to create a new comment
type CreateCommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

// CreateReplyRequest represents a request to create a new reply
type CreateReplyRequest struct {
	CommentID string `json:"commentId"`
	Content   string `json:"content"`
}

// HandleComment handles comment creation and listing the comments of a
// post.
func (s *Server) HandleComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			userID, ok := s.requireUser(w, r)
			if !ok {
				return
			}

			var req CreateCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			postID, err := uuid.Parse(req.PostID)
			if err != nil {
				http.Error(w, "Invalid post ID", http.StatusBadRequest)
				return
			}

			result, ok := s.ask(w, s.Engine.GetCommentActor(), &actors.CreateCommentMsg{
				UserID:  userID,
				PostID:  postID,
				Content: req.Content,
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

			result, ok := s.ask(w, s.Engine.GetCommentActor(), &actors.ListCommentsMsg{PostID: postID})
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleReply handles reply creation and listing the replies of a comment.
func (s *Server) HandleReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			userID, ok := s.requireUser(w, r)
			if !ok {
				return
			}

			var req CreateReplyRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			commentID, err := uuid.Parse(req.CommentID)
			if err != nil {
				http.Error(w, "Invalid comment ID", http.StatusBadRequest)
				return
			}

			result, ok := s.ask(w, s.Engine.GetReplyActor(), &actors.CreateReplyMsg{
				UserID:    userID,
				CommentID: commentID,
				Content:   req.Content,
			})
			if !ok {
				return
			}
			respondJSON(w, http.StatusCreated, result)

		case http.MethodGet:
			commentID, ok := parseUUIDParam(w, r, "commentId")
			if !ok {
				return
			}

			result, ok := s.ask(w, s.Engine.GetReplyActor(), &actors.ListRepliesMsg{CommentID: commentID})
			if !ok {
				return
			}
			respondJSON(w, http.StatusOK, result)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
