// Package api implements the notes HTTP API using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/frankmd/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *noteservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	// Notes. The fixed routes win over the wildcard.
	r.Get("/notes/tree", h.Tree)
	r.Get("/notes/search", h.Search)
	r.Get("/notes/*", h.GetNote)
	r.Post("/notes/*", h.PostNote)
	r.Patch("/notes/*", h.SaveNote)
	r.Put("/notes/*", h.SaveNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Folders.
	r.Post("/folders/*", h.PostFolder)
	r.Delete("/folders/*", h.DeleteFolder)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
