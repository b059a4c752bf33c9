package handler

import (
	"fmt"
	"net/http"
	"time"

	"mandi-app/internal/billing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BillingHandler struct {
	db        *gorm.DB
	previews  *billing.PreviewBuilder
	generator *billing.BillGenerator
	payments  *billing.PaymentProcessor
}

func NewBillingHandler(db *gorm.DB, policy billing.CommissionPolicy, billPrefix string) *BillingHandler {
	return &BillingHandler{
		db:        db,
		previews:  billing.NewPreviewBuilder(db, policy),
		generator: billing.NewBillGenerator(db, policy, billPrefix),
		payments:  billing.NewPaymentProcessor(db),
	}
}

type PreviewRequest struct {
	FarmerID  uint `json:"farmer_id" binding:"required"`
	ProductID uint `json:"product_id"`
	SessionID uint `json:"session_id"`
}

func (h *BillingHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.previews.Build(c.Request.Context(), req.FarmerID, billing.PreviewFilter{
		ProductID: req.ProductID,
		SessionID: req.SessionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type GenerateBillsRequest struct {
	FarmerID      uint                      `json:"farmer_id" binding:"required"`
	Previews      []billing.GenerateRequest `json:"previews" binding:"required"`
	MarkAsPaid    bool                      `json:"mark_as_paid"`
	PaymentMethod string                    `json:"payment_method"`
}

func (h *BillingHandler) GenerateBills(c *gin.Context) {
	var req GenerateBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), req.FarmerID, req.Previews, req.MarkAsPaid, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	// Mixed result: some groups may have failed while others generated.
	c.JSON(http.StatusOK, result)
}

type PayBillsRequest struct {
	BillIDs       []uint     `json:"bill_ids" binding:"required"`
	PaymentMethod string     `json:"payment_method" binding:"required"`
	Notes         string     `json:"notes"`
	PaymentDate   *time.Time `json:"payment_date"`
}

func (h *BillingHandler) PayBills(c *gin.Context) {
	var req PayBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.payments.Pay(c.Request.Context(), billing.PayRequest{
		BillIDs:       req.BillIDs,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		PaymentDate:   req.PaymentDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BillingHandler) ListBills(c *gin.Context) {
	page := 1
	limit := 10
	if c.Query("page") != "" {
		fmt.Sscanf(c.Query("page"), "%d", &page)
	}
	if c.Query("limit") != "" {
		fmt.Sscanf(c.Query("limit"), "%d", &limit)
	}

	var filter billing.BillFilter
	fmt.Sscanf(c.Query("farmer_id"), "%d", &filter.FarmerID)
	fmt.Sscanf(c.Query("product_id"), "%d", &filter.ProductID)
	fmt.Sscanf(c.Query("session_id"), "%d", &filter.SessionID)
	filter.PaymentStatus = c.Query("payment_status")

	if s := c.Query("start_date"); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			filter.FromDate = d
		}
	}
	if s := c.Query("end_date"); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			// Include the whole end day
			filter.ToDate = d.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		}
	}

	result, err := billing.ListBills(c.Request.Context(), h.db, filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
