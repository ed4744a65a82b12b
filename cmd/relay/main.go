package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chat-duo/backend/internal/config"
	"github.com/chat-duo/backend/internal/relay"
)

func main() {
	cfg := config.Load()

	hub := relay.NewHub()
	go hub.Run()

	handler := relay.NewHandler(hub)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", handler.ServeWS)

	addr := fmt.Sprintf(":%s", cfg.RelayPort)
	log.Printf("Broadcast relay starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
