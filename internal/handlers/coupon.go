package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/events"
	"github.com/ferixo/storefront/internal/models"
	"github.com/ferixo/storefront/internal/service/coupon"
)

type CouponHandler struct {
	DB       *gorm.DB
	Producer *events.Producer
}

// Verify is the storefront-facing check used while a coupon sits in the cart.
// Validity is re-checked again at checkout; this endpoint never trusts or
// persists anything client-side.
func (h *CouponHandler) Verify(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	verified, err := coupon.Verify(c.Request().Context(), h.DB, req.Code, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, coupon.ErrExpired):
			return echo.NewHTTPError(http.StatusBadRequest, "coupon expired")
		case errors.Is(err, coupon.ErrNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid or inactive coupon")
		default:
			c.Logger().Errorf("coupon verify error: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "verification failed")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"code":       verified.Code,
		"discount":   verified.DiscountPercent,
		"max_amount": verified.MaxDiscount,
	})
}

func (h *CouponHandler) ListCoupons(c echo.Context) error {
	var coupons []models.Coupon
	if err := h.DB.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch coupons")
	}
	return c.JSON(http.StatusOK, coupons)
}

func (h *CouponHandler) CreateCoupon(c echo.Context) error {
	var req struct {
		Code      string    `json:"code"`
		Discount  float64   `json:"discount"`
		MaxAmount float64   `json:"max_amount"`
		StartsAt  time.Time `json:"starts_at"`
		EndsAt    time.Time `json:"ends_at"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Code == "" || req.Discount <= 0 || req.Discount > 100 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid coupon fields")
	}

	cp := models.Coupon{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountPercent: req.Discount,
		MaxDiscount:     req.MaxAmount,
		Active:          true,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
	}
	if err := h.DB.Create(&cp).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create coupon")
	}

	publish(c, h.Producer, "coupon_events", map[string]any{
		"type":     "coupon_created",
		"couponID": cp.ID,
		"code":     cp.Code,
	})

	return c.JSON(http.StatusCreated, cp)
}

func (h *CouponHandler) DeleteCoupon(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	res := h.DB.Delete(&models.Coupon{}, id)
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "delete failed")
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "coupon not found")
	}

	publish(c, h.Producer, "coupon_events", map[string]any{
		"type":     "coupon_deleted",
		"couponID": id,
	})

	return c.NoContent(http.StatusNoContent)
}
