package models

import (
	"time"
)

// VenueReview represents user review text for a place, read-only from
// the review domain (CRUD lives in a separate service)
type VenueReview struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PlaceID   string    `gorm:"size:255;not null;index" json:"place_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Rating    float64   `gorm:"type:decimal(2,1)" json:"rating,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (VenueReview) TableName() string {
	return "venue_review"
}
