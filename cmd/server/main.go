package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"codocs/internal/config"
	"codocs/internal/handlers"
	"codocs/internal/models"
	"codocs/internal/repositories"
	"codocs/internal/routers"
	"codocs/internal/session"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Document{}, &models.JoinedDocument{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	userRepo := &repositories.UserRepository{DB: db}
	docRepo := &repositories.DocumentRepository{DB: db}
	joinedRepo := &repositories.JoinedDocumentRepository{DB: db}

	registry := session.NewRegistry()
	relay := session.NewRelay(registry)
	gateway := session.NewGateway(registry, relay, docRepo, logger)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret, logger)
	docHandler := handlers.NewDocumentHandler(docRepo, joinedRepo, logger)
	collabHandler := handlers.NewCollabHandler(gateway, logger)

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Mount("/", routers.New(authHandler, docHandler, collabHandler))

	addr := ":" + cfg.Port
	log.Printf("codocs listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
