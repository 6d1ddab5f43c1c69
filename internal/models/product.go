package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const DefaultProductImage = "https://placehold.co/400x300/E2E8F0/A0AEC0?text=No+Image"

// MaxTitleLength is the title column size, in characters.
const MaxTitleLength = 200

// CategoryAll is the filter value meaning "any category".
const CategoryAll = "all"

// Categories lists every category a listing may carry.
var Categories = []string{"electronics", "clothing", "books", "furniture", "sports", "other"}

func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Product is a marketplace listing. OwnerID never changes after creation.
type Product struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"not null;size:200" json:"title"`
	TitleSearch string    `gorm:"not null;default:'';size:400" json:"-"`
	Description string    `gorm:"not null;type:text" json:"description"`
	Category    string    `gorm:"not null;size:20;index" json:"category"`
	Price       float64   `gorm:"not null" json:"price"`
	Image       string    `gorm:"type:text" json:"image"`
	OwnerID     string    `gorm:"not null;size:36;index" json:"owner_id"`
	Owner       *Account  `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// BeforeSave keeps TitleSearch as the lower-cased title so searches fold
// case the same way on every database.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.TitleSearch = strings.ToLower(p.Title)
	return nil
}

// TableName keeps the collection name the listings were always stored under.
func (Product) TableName() string {
	return "products"
}
