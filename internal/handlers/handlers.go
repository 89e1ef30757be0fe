package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"whisper-feed/internal/config"
	"whisper-feed/internal/database"
	"whisper-feed/internal/engine"
	"whisper-feed/internal/images"
	"whisper-feed/internal/middleware"
	"whisper-feed/internal/utils"
	"whisper-feed/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Store          database.Store
	Hub            *websocket.Hub
	Images         *images.Client
	Auth           *middleware.Authenticator
	Config         *config.Config
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	store database.Store,
	hub *websocket.Hub,
	imageClient *images.Client,
	auth *middleware.Authenticator,
	cfg *config.Config,
) *Server {
	return &Server{
		System:         system,
		Context:        system.Root,
		Engine:         eng,
		Metrics:        metrics,
		Store:          store,
		Hub:            hub,
		Images:         imageClient,
		Auth:           auth,
		Config:         cfg,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// requireUser pulls the authenticated user ID out of the request context.
// Writes a 401 and returns false when the middleware did not run.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

// ask sends a request to an actor and unwraps application errors. The
// returned bool reports whether a response was already written.
func (s *Server) ask(w http.ResponseWriter, pid *actor.PID, msg interface{}) (interface{}, bool) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		log.Printf("Actor request failed: %v", err)
		s.Metrics.IncrementErrors()
		http.Error(w, "Request timed out", http.StatusGatewayTimeout)
		return nil, false
	}

	if appErr, ok := result.(*utils.AppError); ok {
		s.Metrics.IncrementErrors()
		http.Error(w, appErr.Error(), utils.AppErrorToHTTPStatus(appErr.Code))
		return nil, false
	}

	return result, true
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// parseUUIDParam parses a query parameter as a UUID and writes a 400 on
// failure.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		http.Error(w, "Missing "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
