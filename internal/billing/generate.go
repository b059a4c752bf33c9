package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mandi-app/internal/models"

	"gorm.io/gorm"
)

type GenerateRequest struct {
	ProductID    uint             `json:"product_id"`
	SessionID    uint             `json:"session_id"`
	OtherCharges models.ChargeMap `json:"other_charges"`
	Notes        string           `json:"notes"`
}

// GroupError reports a single failed preview group. Sibling groups are not
// affected by it.
type GroupError struct {
	ProductID uint   `json:"product_id"`
	SessionID uint   `json:"session_id"`
	Code      string `json:"code"`
	Error     string `json:"error"`
}

type GenerateResult struct {
	GeneratedBills []models.Bill `json:"generated_bills"`
	Errors         []GroupError  `json:"errors"`
}

type BillGenerator struct {
	db     *gorm.DB
	policy CommissionPolicy
	prefix string
	now    func() time.Time
}

func NewBillGenerator(db *gorm.DB, policy CommissionPolicy, prefix string) *BillGenerator {
	return &BillGenerator{db: db, policy: policy, prefix: prefix, now: time.Now}
}

// Generate turns the requested preview groups into persisted bills. Each
// group is re-derived from the ledger at generation time (client-supplied
// preview totals are never trusted) and processed independently: one group
// failing leaves the others untouched. Within a group, bill creation and
// item claiming happen in one transaction; items already claimed by a
// concurrent call make the whole group roll back with a conflict entry.
func (g *BillGenerator) Generate(ctx context.Context, farmerID uint, requests []GenerateRequest, markAsPaid bool, paymentMethod string) (*GenerateResult, error) {
	if farmerID == 0 {
		return nil, NewValidationError("farmer_id is required")
	}
	if len(requests) == 0 {
		return nil, NewValidationError("at least one preview group is required")
	}
	for _, req := range requests {
		if req.ProductID == 0 || req.SessionID == 0 {
			return nil, NewValidationError("each preview group needs product_id and session_id")
		}
	}
	if markAsPaid && paymentMethod == "" {
		return nil, NewValidationError("payment_method is required when marking as paid")
	}

	db := g.db.WithContext(ctx)

	var farmer models.Farmer
	if err := db.First(&farmer, farmerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("farmer not found")
		}
		return nil, NewPersistenceError("failed to load farmer")
	}

	result := &GenerateResult{GeneratedBills: []models.Bill{}, Errors: []GroupError{}}

	// Groups in one call run sequentially; the conditional claim keeps
	// overlapping calls for the same items safe without a global lock.
	for _, req := range requests {
		bill, err := g.generateGroup(db, farmerID, req, markAsPaid, paymentMethod)
		if err != nil {
			var engineErr *Error
			if errors.As(err, &engineErr) && engineErr.Code != CodePersistence {
				result.Errors = append(result.Errors, GroupError{
					ProductID: req.ProductID,
					SessionID: req.SessionID,
					Code:      engineErr.Code,
					Error:     engineErr.Message,
				})
				continue
			}
			// Store failure is fatal; earlier groups have already
			// committed atomically on their own.
			return nil, err
		}
		result.GeneratedBills = append(result.GeneratedBills, *bill)
	}

	return result, nil
}

func (g *BillGenerator) generateGroup(db *gorm.DB, farmerID uint, req GenerateRequest, markAsPaid bool, paymentMethod string) (*models.Bill, error) {
	// Re-derive the billable set with the same filter preview uses. Items
	// claimed since the preview simply drop out here.
	items, err := fetchBillableItems(db, farmerID, PreviewFilter{ProductID: req.ProductID, SessionID: req.SessionID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, NewNotFoundError("no billable items for this group")
	}

	groups := buildGroups(items, g.policy)
	group := groups[0]

	if req.OtherCharges == nil {
		req.OtherCharges = models.ChargeMap{}
	}

	bill := models.Bill{
		FarmerID:       farmerID,
		ProductID:      req.ProductID,
		SessionID:      req.SessionID,
		TotalQuantity:  group.TotalQuantity,
		GrossAmount:    group.GrossAmount,
		CommissionRate: group.CommissionRate,
		CommissionAmt:  group.CommissionAmount,
		OtherCharges:   req.OtherCharges,
		NetPayable:     group.GrossAmount - group.CommissionAmount + req.OtherCharges.Sum(),
		PaymentStatus:  models.PaymentStatusUnpaid,
		Notes:          req.Notes,
	}
	if markAsPaid {
		now := g.now()
		bill.PaymentStatus = models.PaymentStatusPaid
		bill.PaymentMethod = &paymentMethod
		bill.PaymentDate = &now
	}

	itemIDs := make([]uint, 0, len(items))
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		number, err := g.nextBillNumber(tx)
		if err != nil {
			return err
		}
		bill.BillNumber = number

		if err := tx.Create(&bill).Error; err != nil {
			return NewPersistenceError("failed to create bill record")
		}

		// Conditional claim: only items still unclaimed take the new
		// bill_id. A shortfall means a concurrent generation got there
		// first, so the whole group rolls back.
		claim := tx.Model(&models.AuctionItem{}).
			Where("id IN ? AND bill_id IS NULL", itemIDs).
			Update("bill_id", bill.ID)
		if claim.Error != nil {
			return NewPersistenceError("failed to claim auction items")
		}
		if claim.RowsAffected != int64(len(itemIDs)) {
			return NewConflictError("items were claimed by another bill")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range items {
		id := bill.ID
		items[i].BillID = &id
	}
	bill.Items = items
	return &bill, nil
}

// nextBillNumber assigns a globally unique, human-readable number of the
// form PREFIX-YYYYMMDD-00042 from the single-row sequence counter.
func (g *BillGenerator) nextBillNumber(tx *gorm.DB) (string, error) {
	res := tx.Model(&models.BillSequence{}).Where("id = ?", 1).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return "", NewPersistenceError("failed to advance bill sequence")
	}
	if res.RowsAffected == 0 {
		if err := tx.Create(&models.BillSequence{ID: 1, Value: 1}).Error; err != nil {
			return "", NewPersistenceError("failed to seed bill sequence")
		}
	}

	var seq models.BillSequence
	if err := tx.First(&seq, 1).Error; err != nil {
		return "", NewPersistenceError("failed to read bill sequence")
	}

	dateStr := g.now().Format("20060102")
	return fmt.Sprintf("%s-%s-%05d", g.prefix, dateStr, seq.Value), nil
}
