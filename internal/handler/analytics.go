package handler

import (
	"net/http"
	"time"

	"mandi-app/internal/billing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AnalyticsHandler struct {
	aggregator *billing.AnalyticsAggregator
}

func NewAnalyticsHandler(db *gorm.DB, topLimit int) *AnalyticsHandler {
	return &AnalyticsHandler{aggregator: billing.NewAnalyticsAggregator(db, topLimit)}
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	var period billing.Period

	if s := c.Query("start_date"); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			period.From = d
		}
	}
	if s := c.Query("end_date"); s != "" {
		if d, err := time.Parse("2006-01-02", s); err == nil {
			// Set end date to end of day
			period.To = d.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		}
	}

	result, err := h.aggregator.Overview(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
