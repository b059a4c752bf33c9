package models

import (
	"time"
)

type AuctionSession struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionDate time.Time `gorm:"not null" json:"session_date"`
	MarketName  string    `gorm:"size:100" json:"market_name"`
	Status      string    `gorm:"size:20;not null;default:'OPEN'" json:"status"` // OPEN, CLOSED
	CreatedAt   time.Time `json:"created_at"`
}

// AuctionItem is one lot of produce brought by a farmer to a session.
// It becomes billable once a buyer and rate are recorded, and is owned by
// exactly one bill after generation (BillID is set once and never cleared).
type AuctionItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SessionID uint            `gorm:"index;not null" json:"session_id"`
	Session   *AuctionSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	FarmerID  uint            `gorm:"index;not null" json:"farmer_id"`
	Farmer    *Farmer         `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	BuyerID   *uint           `json:"buyer_id"` // Nullable until sold
	Buyer     *Buyer          `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Unit      string          `gorm:"size:20;default:'kg'" json:"unit"`
	Quantity  float64         `gorm:"type:decimal(10,2);not null" json:"quantity"`
	Rate      *float64        `gorm:"type:decimal(10,2)" json:"rate"`    // Per-unit price, set when sold
	BillID    *uint           `gorm:"index" json:"bill_id"`              // Set once by bill generation
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Billable reports whether the item is sold and not yet claimed by a bill.
func (i *AuctionItem) Billable() bool {
	return i.BuyerID != nil && i.Rate != nil && i.BillID == nil
}
