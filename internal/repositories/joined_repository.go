package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"codocs/internal/models"
)

type JoinedDocumentRepository struct {
	DB *gorm.DB
}

// JoinedDocumentView is one row of the joined-documents listing, combining
// the join record with the owning document.
type JoinedDocumentView struct {
	DocumentID  uint      `json:"documentId"`
	JoinedAt    time.Time `json:"joinedAt"`
	JoinedFirst string    `json:"joinedFirst"`
	JoinedLast  string    `json:"joinedLast"`
	OwnerFirst  string    `json:"ownerFirst"`
	OwnerLast   string    `json:"ownerLast"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
}

func (r *JoinedDocumentRepository) Add(ctx context.Context, entry *models.JoinedDocument) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

// ListByUser returns every document the user has joined, with owner and
// content pulled from the documents table.
func (r *JoinedDocumentRepository) ListByUser(ctx context.Context, first, last string) ([]JoinedDocumentView, error) {
	var views []JoinedDocumentView
	err := r.DB.WithContext(ctx).
		Table("joined_documents").
		Select(`joined_documents.document_id AS document_id,
			joined_documents.created_at AS joined_at,
			joined_documents.first AS joined_first,
			joined_documents.last AS joined_last,
			documents.owner_first AS owner_first,
			documents.owner_last AS owner_last,
			documents.title AS title,
			documents.content AS content`).
		Joins("JOIN documents ON documents.id = joined_documents.document_id").
		Where("joined_documents.first = ? AND joined_documents.last = ?", first, last).
		Where("joined_documents.deleted_at IS NULL AND documents.deleted_at IS NULL").
		Scan(&views).Error
	return views, err
}
