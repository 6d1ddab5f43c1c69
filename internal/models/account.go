package models

import (
	"time"
)

const DefaultAccountImage = "https://placehold.co/150x150/E2E8F0/A0AEC0?text=User"

// Column sizes, in characters.
const (
	MaxUsernameLength = 80
	MaxEmailLength    = 120
)

type Account struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"unique;not null;size:80" json:"username"`
	Email        string    `gorm:"unique;not null;size:120" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	Image        string    `gorm:"type:text" json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Products     []Product `gorm:"foreignKey:OwnerID" json:"-"`
}

// AccountSummary is the public part of an account returned next to a token.
type AccountSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (a Account) Summary() AccountSummary {
	return AccountSummary{Username: a.Username, Email: a.Email}
}
