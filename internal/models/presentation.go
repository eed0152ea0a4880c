package models

import "time"

// Presentation lifecycle statuses. The terminal status (completed or failed)
// is set exactly once, at the end of the generation pipeline or on a caught
// failure.
const (
	PresentationDraft      = "draft"
	PresentationProcessing = "processing"
	PresentationCompleted  = "completed"
	PresentationFailed     = "failed"
)

type Presentation struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID  uint   `gorm:"index;not null"`
	Topic   string `gorm:"size:512;not null"`
	Status  string `gorm:"size:16;not null;default:draft"`
	ThemeID string `gorm:"size:64"`

	Slides []Slide `gorm:"constraint:OnDelete:CASCADE" json:"slides,omitempty"`
}
