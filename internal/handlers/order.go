package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/models"
)

type OrderHandler struct {
	DB *gorm.DB
}

type ledgerEntry struct {
	ID       uint    `json:"id"`
	Customer string  `json:"customer"`
	Total    float64 `json:"total"`
	Status   string  `json:"status"`
	Type     string  `json:"type"`
	Date     string  `json:"date"`
}

// ListRecent shapes the latest orders for the admin dashboard ledger.
// Refunded and cancelled orders show as money out.
func (h *OrderHandler) ListRecent(c echo.Context) error {
	var orders []models.Order
	if err := h.DB.Preload("User").
		Order("created_at DESC").Limit(50).
		Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch orders")
	}

	entries := make([]ledgerEntry, 0, len(orders))
	for _, o := range orders {
		customer := "Guest Customer"
		if o.User != nil {
			if o.User.Name != "" {
				customer = o.User.Name
			} else if o.User.Email != "" {
				customer = o.User.Email
			}
		}

		entryType := "SALE_IN"
		if o.Status == models.OrderRefunded || o.Status == models.OrderCancelled {
			entryType = "REFUND_OUT"
		}

		entries = append(entries, ledgerEntry{
			ID:       o.ID,
			Customer: customer,
			Total:    o.FinalAmount,
			Status:   o.Status,
			Type:     entryType,
			Date:     o.CreatedAt.Format("02 Jan 2006"),
		})
	}

	return c.JSON(http.StatusOK, entries)
}
