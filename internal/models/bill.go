package models

import (
	"time"
)

const (
	PaymentStatusUnpaid = "UNPAID"
	PaymentStatusPaid   = "PAID"
)

// ChargeMap holds named signed adjustments (deductions are negative),
// e.g. {"transport": -20}. Stored as a JSON column.
type ChargeMap map[string]int64

// Sum returns the signed total of all charges.
func (m ChargeMap) Sum() int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}

// BillSequence is a single-row counter backing bill number assignment. The
// row lock taken by the increment serializes concurrent generation calls
// without a global in-process lock.
type BillSequence struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Value uint64 `gorm:"not null;default:0" json:"value"`
}

// Bill is the payable record for one farmer/product/session group of
// auction items. Monetary fields are whole currency units. Except for the
// UNPAID -> PAID transition a bill is immutable once created.
type Bill struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	BillNumber     string          `gorm:"size:50;unique;not null" json:"bill_number"`
	FarmerID       uint            `gorm:"index;not null" json:"farmer_id"`
	Farmer         *Farmer         `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	ProductID      uint            `gorm:"index;not null" json:"product_id"`
	Product        *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SessionID      uint            `gorm:"index;not null" json:"session_id"`
	Session        *AuctionSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	TotalQuantity  float64         `gorm:"type:decimal(10,2);not null" json:"total_quantity"`
	GrossAmount    int64           `gorm:"not null" json:"gross_amount"`
	CommissionRate float64         `gorm:"type:decimal(5,2);not null" json:"commission_rate"`
	CommissionAmt  int64           `gorm:"column:commission_amount;not null" json:"commission_amount"`
	OtherCharges   ChargeMap       `gorm:"serializer:json" json:"other_charges"`
	NetPayable     int64           `gorm:"not null" json:"net_payable"`
	PaymentStatus  string          `gorm:"size:20;not null;default:'UNPAID'" json:"payment_status"`
	PaymentMethod  *string         `gorm:"size:30" json:"payment_method"` // Set iff PAID
	PaymentDate    *time.Time      `json:"payment_date"`                  // Set iff PAID
	Notes          string          `gorm:"type:text" json:"notes"`
	Items          []AuctionItem   `gorm:"foreignKey:BillID" json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
