package routers

import (
	"github.com/go-chi/chi/v5"

	"codocs/internal/handlers"
)

func AuthRoutes(r chi.Router, authHandler *handlers.AuthHandler) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", authHandler.RegisterHandler) // User registration
		r.Post("/login", authHandler.LoginHandler)       // User login
		r.Post("/reset", authHandler.ResetHandler)       // Password reset
		r.Get("/me", authHandler.MeHandler)              // Current user
	})
}
