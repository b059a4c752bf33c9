package models

import (
	"time"
)

type Farmer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Village   string    `gorm:"size:100" json:"village"`
	Mobile    string    `gorm:"size:15;unique;not null" json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
}

type Buyer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Mobile    string    `gorm:"size:15;unique;not null" json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
}
