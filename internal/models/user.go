package models

import (
	"time"
)

const (
	TierFree = "free"
	TierPro  = "pro"
)

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name string `gorm:"size:120"`
	Tier string `gorm:"size:16;not null;default:free"`

	// CreditBalance is the pre-paid generation budget. Only the credit
	// repository mutates it, always inside a transaction.
	CreditBalance int `gorm:"not null;default:0"`
}
