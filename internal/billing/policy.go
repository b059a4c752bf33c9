package billing

import (
	"mandi-app/internal/models"
)

// CommissionPolicy resolves the commission percentage for a product.
type CommissionPolicy interface {
	RateFor(product *models.Product) float64
}

// DefaultCommissionPolicy applies a product's own override when present,
// otherwise the yard-wide default rate from config.
type DefaultCommissionPolicy struct {
	DefaultRate float64
}

func (p DefaultCommissionPolicy) RateFor(product *models.Product) float64 {
	if product != nil && product.CommissionRate != nil {
		return *product.CommissionRate
	}
	return p.DefaultRate
}
