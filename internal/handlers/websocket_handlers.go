package handlers

import (
	"log"
	"net/http"

	"whisper-feed/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

// HandleWebSocket handles WebSocket connection requests. Browsers cannot
// set an Authorization header on the upgrade request, so the token rides
// in a query parameter instead.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	upgrader := ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range s.Config.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			log.Println("WebSocket connection failed: Missing token")
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := s.Auth.ValidateToken(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: Invalid token: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		userID := claims.UserID
		if userID == uuid.Nil {
			log.Println("WebSocket connection failed: Nil userID in token claims")
			http.Error(w, "Invalid user ID in token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for User %s: %v", userID, err)
			return
		}

		client := websocket.NewClient(s.Hub, userID, conn)
		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
