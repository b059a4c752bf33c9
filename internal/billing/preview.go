package billing

import (
	"context"
	"errors"
	"sort"
	"time"

	"mandi-app/internal/models"

	"gorm.io/gorm"
)

type PreviewFilter struct {
	ProductID uint // 0 = all products
	SessionID uint // 0 = all sessions
}

// PreviewGroup is an ephemeral grouping of a farmer's unbilled sold lots for
// one (product, session) pair. It is never persisted; generation re-derives
// the item set from the ledger.
type PreviewGroup struct {
	ProductID             uint                 `json:"product_id"`
	ProductName           string               `json:"product_name"`
	Unit                  string               `json:"unit"`
	SessionID             uint                 `json:"session_id"`
	SessionDate           time.Time            `json:"session_date"`
	Items                 []models.AuctionItem `json:"items"`
	TotalQuantity         float64              `json:"total_quantity"`
	TotalBags             int                  `json:"total_bags"`
	GrossAmount           int64                `json:"gross_amount"`
	CommissionRate        float64              `json:"commission_rate"`
	CommissionAmount      int64                `json:"commission_amount"`
	SuggestedOtherCharges models.ChargeMap     `json:"suggested_other_charges"`
	NetPayable            int64                `json:"net_payable"`
}

type PreviewSummary struct {
	TotalPreviews    int   `json:"total_previews"`
	TotalGrossAmount int64 `json:"total_gross_amount"`
	TotalNetPayable  int64 `json:"total_net_payable"`
}

type PreviewResult struct {
	Farmer   models.Farmer  `json:"farmer"`
	Previews []PreviewGroup `json:"previews"`
	Summary  PreviewSummary `json:"summary"`
}

type PreviewBuilder struct {
	db     *gorm.DB
	policy CommissionPolicy
}

func NewPreviewBuilder(db *gorm.DB, policy CommissionPolicy) *PreviewBuilder {
	return &PreviewBuilder{db: db, policy: policy}
}

// Build groups the farmer's billable items by (product, session) and computes
// provisional totals. Read-only: repeated calls with no intervening ledger
// mutation return identical results. An empty item set yields an empty
// preview list, not an error.
func (b *PreviewBuilder) Build(ctx context.Context, farmerID uint, filter PreviewFilter) (*PreviewResult, error) {
	if farmerID == 0 {
		return nil, NewValidationError("farmer_id is required")
	}

	db := b.db.WithContext(ctx)

	var farmer models.Farmer
	if err := db.First(&farmer, farmerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("farmer not found")
		}
		return nil, NewPersistenceError("failed to load farmer")
	}

	items, err := fetchBillableItems(db, farmerID, filter)
	if err != nil {
		return nil, err
	}

	previews := buildGroups(items, b.policy)

	result := &PreviewResult{
		Farmer:   farmer,
		Previews: previews,
		Summary:  PreviewSummary{TotalPreviews: len(previews)},
	}
	for _, g := range previews {
		result.Summary.TotalGrossAmount += g.GrossAmount
		result.Summary.TotalNetPayable += g.NetPayable
	}
	return result, nil
}

// fetchBillableItems loads the farmer's lots that are sold (buyer and rate
// recorded) and not yet claimed by any bill. Both preview and generation go
// through this one query so a stale preview can never bill an already
// claimed item.
func fetchBillableItems(db *gorm.DB, farmerID uint, filter PreviewFilter) ([]models.AuctionItem, error) {
	query := db.Preload("Product").Preload("Session").Preload("Buyer").
		Where("farmer_id = ? AND buyer_id IS NOT NULL AND rate IS NOT NULL AND bill_id IS NULL", farmerID)

	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.SessionID != 0 {
		query = query.Where("session_id = ?", filter.SessionID)
	}

	var items []models.AuctionItem
	if err := query.Order("id asc").Find(&items).Error; err != nil {
		return nil, NewPersistenceError("failed to fetch auction items")
	}
	return items, nil
}

// buildGroups partitions items by (product, session) and totals each group.
// Gross is the sum of per-item quantity*rate; lots in one group may carry
// different rates, so a single group rate does not exist.
func buildGroups(items []models.AuctionItem, policy CommissionPolicy) []PreviewGroup {
	type groupKey struct {
		ProductID uint
		SessionID uint
	}

	grouped := make(map[groupKey]*PreviewGroup)
	order := []groupKey{}

	for _, item := range items {
		key := groupKey{ProductID: item.ProductID, SessionID: item.SessionID}
		group, ok := grouped[key]
		if !ok {
			group = &PreviewGroup{
				ProductID:             item.ProductID,
				SessionID:             item.SessionID,
				Unit:                  item.Unit,
				SuggestedOtherCharges: models.ChargeMap{},
			}
			if item.Product != nil {
				group.ProductName = item.Product.Name
				group.Unit = item.Product.Unit
			}
			if item.Session != nil {
				group.SessionDate = item.Session.SessionDate
			}
			grouped[key] = group
			order = append(order, key)
		}

		group.Items = append(group.Items, item)
		group.TotalQuantity += item.Quantity
		group.TotalBags++
		group.GrossAmount += ItemAmount(item.Quantity, *item.Rate)
	}

	previews := make([]PreviewGroup, 0, len(grouped))
	for _, key := range order {
		group := grouped[key]

		var product *models.Product
		if len(group.Items) > 0 {
			product = group.Items[0].Product
		}
		group.CommissionRate = policy.RateFor(product)
		group.CommissionAmount = CommissionAmount(group.GrossAmount, group.CommissionRate)
		group.NetPayable = group.GrossAmount - group.CommissionAmount + group.SuggestedOtherCharges.Sum()

		previews = append(previews, *group)
	}

	// Deterministic display order: session date ascending, then product name.
	sort.SliceStable(previews, func(i, j int) bool {
		if !previews[i].SessionDate.Equal(previews[j].SessionDate) {
			return previews[i].SessionDate.Before(previews[j].SessionDate)
		}
		return previews[i].ProductName < previews[j].ProductName
	})

	return previews
}
