package routers

import (
	"github.com/go-chi/chi/v5"

	"codocs/internal/handlers"
)

func DocumentRoutes(r chi.Router, docHandler *handlers.DocumentHandler) {
	r.Route("/api/v1/documents", func(r chi.Router) {
		r.Post("/", docHandler.CreateHandler)
		r.Get("/", docHandler.ListByOwnerHandler)
		r.Get("/joined", docHandler.ListJoinedHandler)
		r.Get("/{id}", docHandler.GetContentHandler)
		r.Put("/{id}/content", docHandler.UpdateContentHandler)
		r.Put("/{id}/title", docHandler.UpdateTitleHandler)
		r.Post("/{id}/touch", docHandler.TouchHandler)
		r.Post("/{id}/join", docHandler.JoinHandler)
		r.Delete("/{id}", docHandler.DeleteHandler)
	})
}
