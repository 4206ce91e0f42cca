package api

import (
	"net/http"

	"walkin-queue-service/internal/api/handlers"
	"walkin-queue-service/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(store ports.VenueStore, now handlers.Clock) http.Handler {
	mux := http.NewServeMux()

	queue := &handlers.QueueHandler{Store: store, Now: now}
	inside := &handlers.InsideHandler{Store: store, Now: now}
	history := &handlers.HistoryHandler{Store: store}
	venue := &handlers.VenueHandler{Store: store}

	mux.HandleFunc("/health", handlers.Health)

	mux.HandleFunc("/queue", queue.Queue)
	mux.HandleFunc("/queue/{id}", queue.Party)
	mux.HandleFunc("/queue/{id}/admit", queue.Admit)
	mux.HandleFunc("/estimates/preview", queue.Preview)

	mux.HandleFunc("/inside", inside.List)
	mux.HandleFunc("/inside/{id}", inside.Remove)
	mux.HandleFunc("/inside/{id}/checkout", inside.Checkout)

	mux.HandleFunc("/history", history.List)
	mux.HandleFunc("/history/{id}", history.Remove)

	mux.HandleFunc("/courses", venue.Courses)
	mux.HandleFunc("/settings", venue.Settings)

	return requestIDMiddleware(loggingMiddleware(mux))
}
