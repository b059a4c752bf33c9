package handler

import (
	"fmt"
	"net/http"
	"time"

	"mandi-app/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RegistryHandler covers the simple record management around the billing
// core: farmers, buyers, products, sessions and lot entry. The billing
// engine only ever reads these, except for the bill_id claim it performs
// during generation.
type RegistryHandler struct {
	db *gorm.DB
}

func NewRegistryHandler(db *gorm.DB) *RegistryHandler {
	return &RegistryHandler{db: db}
}

type CreateFarmerRequest struct {
	Name    string `json:"name" binding:"required"`
	Village string `json:"village"`
	Mobile  string `json:"mobile" binding:"required"`
}

func (h *RegistryHandler) CreateFarmer(c *gin.Context) {
	var req CreateFarmerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	farmer := models.Farmer{Name: req.Name, Village: req.Village, Mobile: req.Mobile}
	if err := h.db.Create(&farmer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create farmer (mobile might be duplicate)"})
		return
	}
	c.JSON(http.StatusCreated, farmer)
}

func (h *RegistryHandler) SearchFarmers(c *gin.Context) {
	query := c.Query("q")
	farmers := []models.Farmer{}
	if query == "" {
		h.db.Limit(20).Find(&farmers)
	} else {
		h.db.Where("name LIKE ? OR mobile LIKE ?", "%"+query+"%", "%"+query+"%").Find(&farmers)
	}
	c.JSON(http.StatusOK, farmers)
}

type CreateBuyerRequest struct {
	Name   string `json:"name" binding:"required"`
	Mobile string `json:"mobile" binding:"required"`
}

func (h *RegistryHandler) CreateBuyer(c *gin.Context) {
	var req CreateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buyer := models.Buyer{Name: req.Name, Mobile: req.Mobile}
	if err := h.db.Create(&buyer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create buyer (mobile might be duplicate)"})
		return
	}
	c.JSON(http.StatusCreated, buyer)
}

func (h *RegistryHandler) ListBuyers(c *gin.Context) {
	var buyers []models.Buyer
	if err := h.db.Find(&buyers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch buyers"})
		return
	}
	c.JSON(http.StatusOK, buyers)
}

type CreateProductRequest struct {
	Name           string   `json:"name" binding:"required"`
	Unit           string   `json:"unit"`
	CommissionRate *float64 `json:"commission_rate"`
}

func (h *RegistryHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CommissionRate != nil && (*req.CommissionRate < 0 || *req.CommissionRate > 100) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "commission_rate must be between 0 and 100"})
		return
	}

	product := models.Product{Name: req.Name, Unit: req.Unit, CommissionRate: req.CommissionRate}
	if product.Unit == "" {
		product.Unit = "kg"
	}
	if err := h.db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product (name might be duplicate)"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *RegistryHandler) ListProducts(c *gin.Context) {
	var products []models.Product
	if err := h.db.Order("name asc").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

type CreateSessionRequest struct {
	SessionDate string `json:"session_date" binding:"required"` // YYYY-MM-DD
	MarketName  string `json:"market_name"`
}

func (h *RegistryHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_date must be YYYY-MM-DD"})
		return
	}

	session := models.AuctionSession{SessionDate: date, MarketName: req.MarketName, Status: "OPEN"}
	if err := h.db.Create(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *RegistryHandler) ListSessions(c *gin.Context) {
	var sessions []models.AuctionSession
	query := h.db.Order("session_date desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&sessions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sessions"})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

type CreateItemRequest struct {
	FarmerID  uint    `json:"farmer_id" binding:"required"`
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	Unit      string  `json:"unit"`
}

// CreateItem records a lot brought to a session. The lot is unsold until a
// buyer and rate are recorded via RecordSale.
func (h *RegistryHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sessionID uint
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &sessionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var session models.AuctionSession
	if err := h.db.First(&session, sessionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	if session.Status != "OPEN" {
		c.JSON(http.StatusConflict, gin.H{"error": "Session is closed"})
		return
	}

	item := models.AuctionItem{
		SessionID: sessionID,
		FarmerID:  req.FarmerID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
	}
	if item.Unit == "" {
		var product models.Product
		if err := h.db.First(&product, req.ProductID).Error; err == nil {
			item.Unit = product.Unit
		}
	}

	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create auction item"})
		return
	}
	c.JSON(http.StatusCreated, item)
}

type RecordSaleRequest struct {
	BuyerID uint    `json:"buyer_id" binding:"required"`
	Rate    float64 `json:"rate" binding:"required,gt=0"`
}

// RecordSale sets the buyer and per-unit rate on an unsold lot, making it
// billable. A lot already claimed by a bill is never touched.
func (h *RegistryHandler) RecordSale(c *gin.Context) {
	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var itemID uint
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &itemID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var item models.AuctionItem
	if err := h.db.First(&item, itemID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Auction item not found"})
		return
	}
	if item.BillID != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Item already billed"})
		return
	}

	updates := map[string]interface{}{
		"buyer_id": req.BuyerID,
		"rate":     req.Rate,
	}
	if err := h.db.Model(&item).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record sale"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *RegistryHandler) ListSessionItems(c *gin.Context) {
	var sessionID uint
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &sessionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var items []models.AuctionItem
	err := h.db.Preload("Farmer").Preload("Product").Preload("Buyer").
		Where("session_id = ?", sessionID).Order("id asc").Find(&items).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}
	c.JSON(http.StatusOK, items)
}
