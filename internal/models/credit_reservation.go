package models

import "time"

// Credit reservation statuses. A reservation starts pending and is resolved
// exactly once, by either commit or release; resolving an already-resolved
// reservation is a no-op.
const (
	ReservationPending   = "pending"
	ReservationCommitted = "committed"
	ReservationReleased  = "released"
)

// CreditReservation is a tentative hold against a user's credit balance.
type CreditReservation struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID uint   `gorm:"index;not null"`
	Amount int    `gorm:"not null"`
	Reason string `gorm:"size:255"`
	Status string `gorm:"size:16;not null;default:pending"`
}
