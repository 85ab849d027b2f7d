package models

import (
	"gorm.io/gorm"
)

// Document is a collaborative text document. Content holds the latest
// relayed state; concurrent writers overwrite each other (last write wins).
type Document struct {
	gorm.Model
	Title      string `json:"title"`
	Content    string `gorm:"type:text" json:"content"`
	OwnerFirst string `gorm:"index:idx_documents_owner" json:"ownerFirst"`
	OwnerLast  string `gorm:"index:idx_documents_owner" json:"ownerLast"`
}

// JoinedDocument records that a user joined someone else's document.
type JoinedDocument struct {
	gorm.Model
	DocumentID uint   `gorm:"not null;index" json:"documentId"`
	First      string `gorm:"index:idx_joined_user" json:"first"`
	Last       string `gorm:"index:idx_joined_user" json:"last"`
}
