package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"codocs/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository struct {
	DB *gorm.DB
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	return r.DB.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := r.DB.WithContext(ctx).First(&doc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	result := r.DB.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Update("content", content)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *DocumentRepository) UpdateTitle(ctx context.Context, id uint, title string) error {
	result := r.DB.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Update("title", title)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Touch bumps updated_at and returns the new timestamp.
func (r *DocumentRepository) Touch(ctx context.Context, id uint) (time.Time, error) {
	now := time.Now()
	result := r.DB.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Update("updated_at", now)
	if result.Error != nil {
		return time.Time{}, result.Error
	}
	if result.RowsAffected == 0 {
		return time.Time{}, ErrDocumentNotFound
	}
	return now, nil
}

// Delete removes a document. Deleting an absent id is not an error.
func (r *DocumentRepository) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Document{}, id).Error
}

func (r *DocumentRepository) ListByOwner(ctx context.Context, first, last string) ([]models.Document, error) {
	var docs []models.Document
	err := r.DB.WithContext(ctx).
		Where("owner_first = ? AND owner_last = ?", first, last).
		Find(&docs).Error
	return docs, err
}
