package models

import (
	"time"
)

type Product struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;unique;not null" json:"name"`
	Unit string `gorm:"size:20;default:'kg'" json:"unit"`
	// Per-product commission override (percent). Nil means the global
	// COMMISSION_RATE from config applies.
	CommissionRate *float64  `gorm:"type:decimal(5,2)" json:"commission_rate"`
	CreatedAt      time.Time `json:"created_at"`
}
