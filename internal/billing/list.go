package billing

import (
	"context"
	"time"

	"mandi-app/internal/models"

	"gorm.io/gorm"
)

type BillFilter struct {
	FarmerID      uint
	ProductID     uint
	SessionID     uint
	PaymentStatus string
	FromDate      time.Time
	ToDate        time.Time
}

type BillPage struct {
	Data  []models.Bill `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ListBills is a thin paginated projection over the bill ledger.
func ListBills(ctx context.Context, db *gorm.DB, filter BillFilter, page, limit int) (*BillPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := db.WithContext(ctx).Model(&models.Bill{})
	if filter.FarmerID != 0 {
		query = query.Where("farmer_id = ?", filter.FarmerID)
	}
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.SessionID != 0 {
		query = query.Where("session_id = ?", filter.SessionID)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if !filter.FromDate.IsZero() {
		query = query.Where("created_at >= ?", filter.FromDate)
	}
	if !filter.ToDate.IsZero() {
		query = query.Where("created_at <= ?", filter.ToDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, NewPersistenceError("failed to count bills")
	}

	var bills []models.Bill
	err := query.Preload("Farmer").Preload("Product").Preload("Session").Preload("Items").
		Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&bills).Error
	if err != nil {
		return nil, NewPersistenceError("failed to fetch bills")
	}

	return &BillPage{Data: bills, Total: total, Page: page, Limit: limit}, nil
}
