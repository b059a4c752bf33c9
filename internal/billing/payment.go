package billing

import (
	"context"
	"fmt"
	"time"

	"mandi-app/internal/models"

	"gorm.io/gorm"
)

type PayRequest struct {
	BillIDs       []uint     `json:"bill_ids"`
	PaymentMethod string     `json:"payment_method"`
	Notes         string     `json:"notes"`
	PaymentDate   *time.Time `json:"payment_date"` // Defaults to call time
}

type PayResult struct {
	UpdatedBills []models.Bill `json:"updated_bills"`
	Skipped      []models.Bill `json:"skipped"`
}

type PaymentProcessor struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPaymentProcessor(db *gorm.DB) *PaymentProcessor {
	return &PaymentProcessor{db: db, now: time.Now}
}

// Pay transitions every UNPAID bill in the batch to PAID as one atomic unit.
// A batch represents a single real-world disbursement, so any unknown bill id
// or store failure fails the whole call with no bill changed. Bills already
// PAID are reported as skipped, never as errors; re-submitting the same ids
// is a no-op for them. Single and bulk payments go through this same path.
func (p *PaymentProcessor) Pay(ctx context.Context, req PayRequest) (*PayResult, error) {
	if len(req.BillIDs) == 0 {
		return nil, NewValidationError("bill_ids is required")
	}
	if req.PaymentMethod == "" {
		return nil, NewValidationError("payment_method is required")
	}

	paymentDate := p.now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	result := &PayResult{UpdatedBills: []models.Bill{}, Skipped: []models.Bill{}}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var bills []models.Bill
		if err := tx.Where("id IN ?", req.BillIDs).Find(&bills).Error; err != nil {
			return NewPersistenceError("failed to load bills")
		}

		found := make(map[uint]bool, len(bills))
		for _, b := range bills {
			found[b.ID] = true
		}
		for _, id := range req.BillIDs {
			if !found[id] {
				return NewNotFoundError(fmt.Sprintf("bill %d not found", id))
			}
		}

		unpaidIDs := []uint{}
		for _, b := range bills {
			if b.PaymentStatus == models.PaymentStatusPaid {
				result.Skipped = append(result.Skipped, b)
			} else {
				unpaidIDs = append(unpaidIDs, b.ID)
			}
		}

		if len(unpaidIDs) == 0 {
			return nil
		}

		updates := map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"payment_method": req.PaymentMethod,
			"payment_date":   paymentDate,
		}
		if req.Notes != "" {
			updates["notes"] = req.Notes
		}

		// Guarded on current status so a concurrent payment of the same
		// bill can never apply twice.
		res := tx.Model(&models.Bill{}).
			Where("id IN ? AND payment_status = ?", unpaidIDs, models.PaymentStatusUnpaid).
			Updates(updates)
		if res.Error != nil {
			return NewPersistenceError("failed to update bills")
		}
		if res.RowsAffected != int64(len(unpaidIDs)) {
			return NewConflictError("bill payment state changed during processing")
		}

		if err := tx.Where("id IN ?", unpaidIDs).Order("id asc").Find(&result.UpdatedBills).Error; err != nil {
			return NewPersistenceError("failed to reload updated bills")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
