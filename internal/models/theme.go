package models

import "time"

// Theme is a visual theme reference. Palette and layout details belong to the
// export renderer; this core only resolves which theme a deck uses.
type Theme struct {
	ID        string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name      string `gorm:"size:255;not null"`
	IsDefault bool   `gorm:"not null;default:false"`
}
