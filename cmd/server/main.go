package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chat-duo/backend/internal/config"
	"github.com/chat-duo/backend/internal/handlers"
	"github.com/chat-duo/backend/internal/observability"
	"github.com/chat-duo/backend/internal/store"
)

func main() {
	// Load configuration from environment
	cfg := config.Load()

	// Canonical in-memory room state; lost on restart
	roomStore := store.NewRoomStore()

	// Background sweep of expired device heartbeats
	janitor := store.NewJanitor(roomStore, 1*time.Minute)
	go janitor.Start()

	syncHandler := handlers.NewSyncHandler(roomStore)

	// Set up router with middleware
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.HTTPMetrics)

	allowedOrigins := cfg.AllowedOrigins()
	log.Printf("CORS allowed origins: %v (env: %s)", allowedOrigins, cfg.AppEnv)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Liveness probe
	r.Get("/", handlers.Liveness)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", syncHandler.ListRooms)
			r.Post("/", syncHandler.SyncRooms)
		})
	})

	// Start server
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Sync server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
