package models

import (
	"time"
)

// Promotion represents an active discount or deal attached to a place
type Promotion struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PlaceID     string     `gorm:"size:255;not null;index" json:"place_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	DiscountPct int        `json:"discount_pct,omitempty"`
	StartsAt    time.Time  `gorm:"not null;index" json:"starts_at"`
	EndsAt      time.Time  `gorm:"not null;index" json:"ends_at"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime" json:"updated_at,omitempty"`
}

func (Promotion) TableName() string {
	return "promotion"
}

// Event represents a scheduled happening (live music, trivia night, ...) at a place
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PlaceID     string    `gorm:"size:255;not null;index" json:"place_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	StartsAt    time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt      time.Time `gorm:"not null" json:"ends_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Event) TableName() string {
	return "event"
}
