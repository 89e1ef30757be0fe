package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"whisper-feed/internal/broker"
	"whisper-feed/internal/config"
	"whisper-feed/internal/database"
	"whisper-feed/internal/engine"
	"whisper-feed/internal/handlers"
	"whisper-feed/internal/images"
	"whisper-feed/internal/middleware"
	"whisper-feed/internal/utils"
	"whisper-feed/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	metrics := utils.NewMetricsCollector()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()

	// Fan-out registry feeds live subscriptions from accepted mutations.
	registry := broker.NewRegistry(store, cfg.Feed.PageSize)
	go registry.Run()
	defer registry.Shutdown()

	// Actor system: one actor per entity family serializes its mutations.
	system := actor.NewActorSystem()
	feedEngine := engine.NewEngine(system, store, registry, metrics, engine.Options{
		HandleSecret:    []byte(cfg.Feed.HandleSecret),
		ReportThreshold: cfg.Feed.ReportThreshold,
		PageSize:        cfg.Feed.PageSize,
	})

	hub := websocket.NewHub(registry)
	go hub.Run()

	imageClient := images.NewClient(cfg.ImageHostURL)
	auth := middleware.NewAuthenticator(cfg.JWTSecret)

	server := handlers.NewServer(system, feedEngine, metrics, store, hub, imageClient, auth, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HandleHealth())
	mux.HandleFunc("/membership", server.HandleMembership())
	mux.HandleFunc("/post", server.HandlePost())
	mux.HandleFunc("/post/feed", server.HandleFeed())
	mux.HandleFunc("/comment", server.HandleComment())
	mux.HandleFunc("/reply", server.HandleReply())
	mux.HandleFunc("/like", server.HandleLike())
	mux.HandleFunc("/report", server.HandleReport())
	mux.HandleFunc("/moderation/queue", server.HandleModerationQueue())
	mux.HandleFunc("/image", server.HandleImageUpload())

	// The websocket route authenticates from a query parameter, so it sits
	// outside the auth middleware chain.
	mux.HandleFunc("/ws", server.HandleWebSocket())

	corsConfig := middleware.DefaultCORSConfig(cfg.AllowedOrigins)
	handler := middleware.CORSMiddleware(corsConfig)(auth.Middleware(countRequests(metrics, mux)))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s (store: %s)", serverAddr, cfg.Database.Type)
	if err := http.ListenAndServe(serverAddr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func countRequests(metrics *utils.MetricsCollector, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.IncrementRequests()
		next.ServeHTTP(w, r)
	})
}

// openStore picks the storage backend from configuration. Mongo is the
// production path; the in-memory store exists for local development.
func openStore(cfg *config.Config) (database.Store, error) {
	switch cfg.Database.Type {
	case "memory":
		log.Println("Using in-memory store")
		return database.NewMemoryStore(), nil
	case "mongo", "":
		mongodb, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongodb.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return mongodb, nil
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Database.Type)
	}
}
