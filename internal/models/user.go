package models

import (
	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	gorm.Model
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	First        string `gorm:"not null" json:"first"`
	Last         string `gorm:"not null" json:"last"`
}
