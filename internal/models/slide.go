package models

import (
	"fmt"
	"strings"
	"time"
)

// SlideType is a closed enumeration classifying a slide's layout and content
// intent.
type SlideType string

const (
	SlideTitle         SlideType = "title"
	SlideAgenda        SlideType = "agenda"
	SlideContent       SlideType = "content"
	SlideChart         SlideType = "chart"
	SlideTable         SlideType = "table"
	SlideComparison    SlideType = "comparison"
	SlideQuote         SlideType = "quote"
	SlideSectionHeader SlideType = "section_header"
	SlideCallToAction  SlideType = "call_to_action"
)

// DataBearing reports whether the slide type carries factual claims that are
// worth grounding and fact-checking.
func (t SlideType) DataBearing() bool {
	switch t {
	case SlideChart, SlideTable, SlideComparison:
		return true
	}
	return false
}

// Minimal reports whether the slide type is intentionally sparse; minimal
// slides skip density review and the empty-body structural check.
func (t SlideType) Minimal() bool {
	switch t {
	case SlideTitle, SlideQuote, SlideSectionHeader:
		return true
	}
	return false
}

// LayoutConstrained reports whether the slide type renders a fixed number of
// visual components and must be truncated rather than overflowed.
func (t SlideType) LayoutConstrained() bool {
	switch t {
	case SlideComparison, SlideAgenda:
		return true
	}
	return false
}

// Slide is the persisted realized slide. SlideNumber is 1-based and always
// contiguous within a presentation: every insert, delete, or truncate is
// followed by a renumbering pass.
type Slide struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PresentationID uint      `gorm:"index;not null"`
	SlideNumber    int       `gorm:"not null"`
	Title          string    `gorm:"size:512"`
	Body           string    `gorm:"type:text"`
	SpeakerNotes   string    `gorm:"type:text"`
	SlideType      SlideType `gorm:"size:32;not null"`
	ImagePrompt    string    `gorm:"size:1024"`
	SectionLabel   string    `gorm:"size:255"`
}

// Summary is the compact "title — first body line" form used for rolling
// context windows and deck-level review, keeping prompts bounded regardless
// of body size.
func (s *Slide) Summary() string {
	first := s.Body
	if idx := strings.IndexByte(first, '\n'); idx >= 0 {
		first = first[:idx]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return fmt.Sprintf("%d. %s", s.SlideNumber, s.Title)
	}
	return fmt.Sprintf("%d. %s — %s", s.SlideNumber, s.Title, first)
}
