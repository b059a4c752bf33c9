package billing

import (
	"fmt"
	"testing"
	"time"

	"mandi-app/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Farmer{},
		&models.Buyer{},
		&models.Product{},
		&models.AuctionSession{},
		&models.AuctionItem{},
		&models.Bill{},
		&models.BillSequence{},
	)
	require.NoError(t, err)

	return db
}

func floatPtr(v float64) *float64 { return &v }

func createFarmer(t *testing.T, db *gorm.DB, name string) models.Farmer {
	t.Helper()
	farmer := models.Farmer{Name: name, Mobile: name + "-9000000000"}
	require.NoError(t, db.Create(&farmer).Error)
	return farmer
}

func createBuyer(t *testing.T, db *gorm.DB, name string) models.Buyer {
	t.Helper()
	buyer := models.Buyer{Name: name, Mobile: name + "-8000000000"}
	require.NoError(t, db.Create(&buyer).Error)
	return buyer
}

func createProduct(t *testing.T, db *gorm.DB, name string, commissionRate *float64) models.Product {
	t.Helper()
	product := models.Product{Name: name, Unit: "kg", CommissionRate: commissionRate}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func createSession(t *testing.T, db *gorm.DB, date time.Time) models.AuctionSession {
	t.Helper()
	session := models.AuctionSession{SessionDate: date, MarketName: "Main Yard", Status: "OPEN"}
	require.NoError(t, db.Create(&session).Error)
	return session
}

// createSoldItem records a lot that already has a buyer and rate, i.e. one
// that is billable until a bill claims it.
func createSoldItem(t *testing.T, db *gorm.DB, session models.AuctionSession, farmer models.Farmer, product models.Product, buyer models.Buyer, quantity, rate float64) models.AuctionItem {
	t.Helper()
	item := models.AuctionItem{
		SessionID: session.ID,
		FarmerID:  farmer.ID,
		ProductID: product.ID,
		BuyerID:   &buyer.ID,
		Unit:      product.Unit,
		Quantity:  quantity,
		Rate:      &rate,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func createUnsoldItem(t *testing.T, db *gorm.DB, session models.AuctionSession, farmer models.Farmer, product models.Product, quantity float64) models.AuctionItem {
	t.Helper()
	item := models.AuctionItem{
		SessionID: session.ID,
		FarmerID:  farmer.ID,
		ProductID: product.ID,
		Unit:      product.Unit,
		Quantity:  quantity,
	}
	require.NoError(t, db.Create(&item).Error)
	return item
}

func createBill(t *testing.T, db *gorm.DB, farmer models.Farmer, product models.Product, session models.AuctionSession, net int64, status string) models.Bill {
	t.Helper()
	billCounter++
	bill := models.Bill{
		BillNumber:     fmt.Sprintf("T-%06d", billCounter),
		FarmerID:       farmer.ID,
		ProductID:      product.ID,
		SessionID:      session.ID,
		TotalQuantity:  10,
		GrossAmount:    net,
		CommissionRate: 0,
		CommissionAmt:  0,
		OtherCharges:   models.ChargeMap{},
		NetPayable:     net,
		PaymentStatus:  status,
	}
	if status == models.PaymentStatusPaid {
		method := "cash"
		now := time.Now()
		bill.PaymentMethod = &method
		bill.PaymentDate = &now
	}
	require.NoError(t, db.Create(&bill).Error)
	return bill
}

var billCounter int
