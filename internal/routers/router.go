package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"codocs/internal/handlers"
	"codocs/internal/metrics"
)

// New wires every route group onto one handler tree.
func New(auth *handlers.AuthHandler, docs *handlers.DocumentHandler, collab *handlers.CollabHandler) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/v1/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	AuthRoutes(r, auth)
	DocumentRoutes(r, docs)

	r.Get("/ws/collab", collab.ServeWS)

	return r
}
