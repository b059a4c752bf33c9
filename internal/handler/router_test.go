package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"mandi-app/internal/billing"
	"mandi-app/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Farmer{},
		&models.Buyer{},
		&models.Product{},
		&models.AuctionSession{},
		&models.AuctionItem{},
		&models.Bill{},
		&models.BillSequence{},
	))

	policy := billing.DefaultCommissionPolicy{DefaultRate: 3}

	r := gin.New()

	registry := NewRegistryHandler(db)
	registryRoutes := r.Group("/api/v1/registry")
	{
		registryRoutes.POST("/farmers", registry.CreateFarmer)
		registryRoutes.GET("/farmers", registry.SearchFarmers)
		registryRoutes.POST("/buyers", registry.CreateBuyer)
		registryRoutes.GET("/buyers", registry.ListBuyers)
		registryRoutes.POST("/products", registry.CreateProduct)
		registryRoutes.GET("/products", registry.ListProducts)
		registryRoutes.POST("/sessions", registry.CreateSession)
		registryRoutes.GET("/sessions", registry.ListSessions)
		registryRoutes.POST("/sessions/:id/items", registry.CreateItem)
		registryRoutes.GET("/sessions/:id/items", registry.ListSessionItems)
		registryRoutes.PUT("/items/:id/sale", registry.RecordSale)
	}

	billingHandler := NewBillingHandler(db, policy, "MB")
	billingRoutes := r.Group("/api/v1/billing")
	{
		billingRoutes.POST("/preview", billingHandler.Preview)
		billingRoutes.POST("/generate", billingHandler.GenerateBills)
		billingRoutes.POST("/pay", billingHandler.PayBills)
		billingRoutes.GET("/bills", billingHandler.ListBills)
	}

	analytics := NewAnalyticsHandler(db, 5)
	r.GET("/api/v1/analytics/overview", analytics.Overview)

	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// Walks the full flow: register records, enter and sell lots, preview,
// generate, pay, then check the list and dashboard reflect it.
func TestBillingFlow(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/registry/farmers", gin.H{
		"name": "Raman", "village": "Kinathukadavu", "mobile": "9876543210",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var farmer models.Farmer
	decodeInto(t, w, &farmer)

	w = doJSON(t, r, http.MethodPost, "/api/v1/registry/buyers", gin.H{
		"name": "Kumar Traders", "mobile": "9123456780",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var buyer models.Buyer
	decodeInto(t, w, &buyer)

	w = doJSON(t, r, http.MethodPost, "/api/v1/registry/products", gin.H{
		"name": "Tomato", "unit": "kg",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var product models.Product
	decodeInto(t, w, &product)

	w = doJSON(t, r, http.MethodPost, "/api/v1/registry/sessions", gin.H{
		"session_date": "2026-03-10", "market_name": "Main Yard",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var session models.AuctionSession
	decodeInto(t, w, &session)

	// Two lots, sold at different rates: 10*50 + 8*45 = 860 gross
	for _, lot := range []struct {
		qty  float64
		rate float64
	}{{10, 50}, {8, 45}} {
		w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/registry/sessions/%d/items", session.ID), gin.H{
			"farmer_id": farmer.ID, "product_id": product.ID, "quantity": lot.qty,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var item models.AuctionItem
		decodeInto(t, w, &item)

		w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/registry/items/%d/sale", item.ID), gin.H{
			"buyer_id": buyer.ID, "rate": lot.rate,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/billing/preview", gin.H{"farmer_id": farmer.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var preview billing.PreviewResult
	decodeInto(t, w, &preview)
	require.Len(t, preview.Previews, 1)
	assert.Equal(t, int64(860), preview.Previews[0].GrossAmount)
	assert.Equal(t, int64(26), preview.Previews[0].CommissionAmount) // 3% of 860, rounded
	assert.Equal(t, int64(834), preview.Summary.TotalNetPayable)

	w = doJSON(t, r, http.MethodPost, "/api/v1/billing/generate", gin.H{
		"farmer_id": farmer.ID,
		"previews": []gin.H{{
			"product_id":    product.ID,
			"session_id":    session.ID,
			"other_charges": gin.H{"loading": -10},
		}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var generated billing.GenerateResult
	decodeInto(t, w, &generated)
	require.Len(t, generated.GeneratedBills, 1)
	require.Empty(t, generated.Errors)
	bill := generated.GeneratedBills[0]
	assert.Regexp(t, `^MB-\d{8}-\d{5}$`, bill.BillNumber)
	assert.Equal(t, int64(824), bill.NetPayable)
	assert.Equal(t, models.PaymentStatusUnpaid, bill.PaymentStatus)

	// The claimed items no longer preview
	w = doJSON(t, r, http.MethodPost, "/api/v1/billing/preview", gin.H{"farmer_id": farmer.ID})
	require.Equal(t, http.StatusOK, w.Code)
	decodeInto(t, w, &preview)
	assert.Empty(t, preview.Previews)

	w = doJSON(t, r, http.MethodPost, "/api/v1/billing/pay", gin.H{
		"bill_ids": []uint{bill.ID}, "payment_method": "upi",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var paid billing.PayResult
	decodeInto(t, w, &paid)
	require.Len(t, paid.UpdatedBills, 1)
	assert.Equal(t, models.PaymentStatusPaid, paid.UpdatedBills[0].PaymentStatus)

	w = doJSON(t, r, http.MethodGet, "/api/v1/billing/bills?payment_status=PAID", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page billing.BillPage
	decodeInto(t, w, &page)
	assert.Equal(t, int64(1), page.Total)

	w = doJSON(t, r, http.MethodGet, "/api/v1/analytics/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview billing.OverviewResult
	decodeInto(t, w, &overview)
	assert.Equal(t, int64(1), overview.Overview.TotalBills)
	assert.Equal(t, int64(824), overview.Overview.PaidAmount)
	assert.Equal(t, 100.0, overview.Overview.PaymentRate)
}

func TestErrorStatusMapping(t *testing.T) {
	r, db := setupRouter(t)

	// Unknown farmer
	w := doJSON(t, r, http.MethodPost, "/api/v1/billing/preview", gin.H{"farmer_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Missing required field fails binding
	w = doJSON(t, r, http.MethodPost, "/api/v1/billing/preview", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Paying a bill that does not exist
	w = doJSON(t, r, http.MethodPost, "/api/v1/billing/pay", gin.H{
		"bill_ids": []uint{777}, "payment_method": "cash",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Recording a sale on a billed item conflicts
	farmer := models.Farmer{Name: "Raman", Mobile: "9876543210"}
	require.NoError(t, db.Create(&farmer).Error)
	product := models.Product{Name: "Tomato", Unit: "kg"}
	require.NoError(t, db.Create(&product).Error)
	session := models.AuctionSession{MarketName: "Main Yard", Status: "OPEN"}
	require.NoError(t, db.Create(&session).Error)
	billID := uint(55)
	item := models.AuctionItem{
		SessionID: session.ID, FarmerID: farmer.ID, ProductID: product.ID,
		Quantity: 5, Unit: "kg", BillID: &billID,
	}
	require.NoError(t, db.Create(&item).Error)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/v1/registry/items/%d/sale", item.ID), gin.H{
		"buyer_id": 1, "rate": 40,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestClosedSessionRejectsItems(t *testing.T) {
	r, db := setupRouter(t)

	session := models.AuctionSession{MarketName: "Main Yard", Status: "CLOSED"}
	require.NoError(t, db.Create(&session).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/registry/sessions/%d/items", session.ID), gin.H{
		"farmer_id": 1, "product_id": 1, "quantity": 5,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
