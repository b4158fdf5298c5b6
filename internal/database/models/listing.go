package models

import "github.com/google/uuid"

// Listing is a legacy single-owner resource: rows are keyed by the user who
// created them, not by a company.
type Listing struct {
	Base
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	City        string    `gorm:"index" json:"city"`
	PriceCents  int64     `json:"price_cents"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Available   bool      `gorm:"default:true" json:"available"`

	// JSON array of image URLs. Upload/storage is handled elsewhere.
	ImageURLs string `gorm:"default:'[]'" json:"image_urls"`
}

func (Listing) TableName() string {
	return "listings"
}
