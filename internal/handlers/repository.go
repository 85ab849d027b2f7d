package handlers

import (
	"context"
	"time"

	"codocs/internal/models"
	"codocs/internal/repositories"
)

// UserRepository captures the persistence operations required by handlers.
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	UpdatePassword(email, passwordHash string) error
}

// DocumentRepository captures the document persistence operations required
// by handlers and by the session gateway.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uint) (*models.Document, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	UpdateTitle(ctx context.Context, id uint, title string) error
	Touch(ctx context.Context, id uint) (time.Time, error)
	Delete(ctx context.Context, id uint) error
	ListByOwner(ctx context.Context, first, last string) ([]models.Document, error)
}

// JoinedDocumentRepository captures the joined-documents bookkeeping.
type JoinedDocumentRepository interface {
	Add(ctx context.Context, entry *models.JoinedDocument) error
	ListByUser(ctx context.Context, first, last string) ([]repositories.JoinedDocumentView, error)
}
