package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dagaz/internal/boardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *boardservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Board configuration and snapshot.
	r.Get("/board", h.GetBoard)
	r.Put("/board", h.SaveBoard)

	// Cards.
	r.Post("/cards", h.CreateCard)
	r.Put("/cards", h.UpdateCard)
	r.Delete("/cards/{column}/{slug}", h.DeleteCard)

	// Archive.
	r.Get("/archive", h.ListArchived)
	r.Post("/archive", h.ArchiveCard)
	r.Post("/archive/restore", h.UnarchiveCard)

	// Sync.
	r.Get("/sync/status", h.SyncStatus)
	r.Post("/sync/push", h.SyncPush)
	r.Post("/sync/pull", h.SyncPull)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
