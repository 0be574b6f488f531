package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/events"
	"github.com/ferixo/storefront/internal/models"
	"github.com/ferixo/storefront/internal/payment"
	"github.com/ferixo/storefront/internal/pricing"
	"github.com/ferixo/storefront/internal/service/coupon"
)

type CheckoutHandler struct {
	DB       *gorm.DB
	Gateway  payment.Gateway
	Producer *events.Producer
	Policy   pricing.Policy
}

type shippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

type createOrderRequest struct {
	Email           string             `json:"email"`
	Name            string             `json:"name"`
	Phone           string             `json:"phone"`
	ShippingAddress shippingAddress    `json:"shipping_address"`
	CartItems       []pricing.LineItem `json:"cart_items"`
	CouponCode      string             `json:"coupon_code"`
	SaveAddress     bool               `json:"save_address"`
	IdempotencyKey  string             `json:"idempotency_key"`
}

// orderSnapshot is the JSON blob frozen into the order row. The address rides
// along so the order survives even when the Address table write failed.
type orderSnapshot struct {
	Cart     []pricing.LineItem `json:"cart"`
	Shipping shippingAddress    `json:"shipping_snapshot"`
	TaxLines []pricing.TaxLine  `json:"tax_lines"`
}

func (h *CheckoutHandler) orderResponse(c echo.Context, order *models.Order) error {
	return c.JSON(http.StatusOK, echo.Map{
		"order_id":          order.ID,
		"razorpay_order_id": order.GatewayOrderID,
		"amount":            int64(order.FinalAmount) * 100,
		"currency":          "INR",
		"key_id":            h.Gateway.KeyID(),
	})
}

// CreateOrder runs the whole checkout initiation: server-side coupon
// re-verification, total recomputation, find-or-create user, best-effort
// address save, a PENDING order row and the gateway order. Client-submitted
// totals are never trusted. A repeated idempotency key returns the existing
// order instead of writing a second row.
func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	// Credentials are validated before any other work so a misconfigured
	// deployment fails here, not with a confusing gateway error downstream.
	if h.Gateway == nil {
		c.Logger().Error("checkout: payment gateway not configured")
		return echo.NewHTTPError(http.StatusInternalServerError, "payment configuration missing")
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email required")
	}
	if len(req.CartItems) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	for _, it := range req.CartItems {
		if it.Quantity < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid item quantity")
		}
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}

	// Resubmission of the same checkout attempt.
	var existing models.Order
	err := h.DB.Where("idempotency_key = ?", req.IdempotencyKey).First(&existing).Error
	if err == nil && existing.GatewayOrderID != "" {
		return h.orderResponse(c, &existing)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.Logger().Errorf("checkout: idempotency lookup: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "order creation failed")
	}
	resumed := err == nil

	// The coupon is re-verified here; an invalid code contributes no
	// discount rather than failing the checkout.
	var appliedCoupon *pricing.Coupon
	if req.CouponCode != "" {
		verified, vErr := coupon.Verify(c.Request().Context(), h.DB, req.CouponCode, time.Now())
		if vErr == nil {
			appliedCoupon = verified
		} else if !errors.Is(vErr, coupon.ErrNotFound) && !errors.Is(vErr, coupon.ErrExpired) {
			c.Logger().Errorf("checkout: coupon verify: %v", vErr)
			return echo.NewHTTPError(http.StatusInternalServerError, "order creation failed")
		}
	}

	totals := pricing.Calculate(req.CartItems, appliedCoupon, h.Policy)

	snapshot, err := json.Marshal(orderSnapshot{
		Cart:     req.CartItems,
		Shipping: req.ShippingAddress,
		TaxLines: pricing.SplitTax(totals, req.ShippingAddress.State, h.Policy),
	})
	if err != nil {
		c.Logger().Errorf("checkout: snapshot marshal: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "order creation failed")
	}

	var order models.Order
	if resumed {
		order = existing
	} else {
		var user models.User
		isNewUser := false
		txErr := h.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("email = ?", req.Email).First(&user).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				isNewUser = true
				user = models.User{
					Email: req.Email,
					Name:  req.Name,
					Phone: req.Phone,
					Role:  models.RoleCustomer,
				}
				if err := tx.Create(&user).Error; err != nil {
					return err
				}
			}

			order = models.Order{
				UserID:         user.ID,
				IdempotencyKey: req.IdempotencyKey,
				Items:          snapshot,
				Subtotal:       totals.Subtotal,
				TaxAmount:      totals.TaxAmount,
				ShippingAmount: totals.Shipping,
				DiscountAmount: totals.Discount,
				FinalAmount:    totals.FinalAmount,
				Status:         models.OrderPending,
			}
			return tx.Create(&order).Error
		})
		if txErr != nil {
			c.Logger().Errorf("checkout: order write: %v", txErr)
			return echo.NewHTTPError(http.StatusInternalServerError, "order creation failed")
		}

		// Non-critical: a failed address save never aborts checkout.
		if isNewUser || req.SaveAddress {
			addr := models.Address{
				UserID:  user.ID,
				Type:    "SHIPPING",
				Street:  req.ShippingAddress.Street,
				City:    req.ShippingAddress.City,
				State:   req.ShippingAddress.State,
				Pincode: req.ShippingAddress.Pincode,
				Country: req.ShippingAddress.Country,
			}
			if addr.Country == "" {
				addr.Country = "India"
			}
			if err := h.DB.Create(&addr).Error; err != nil {
				c.Logger().Errorf("checkout: address save warning: %v", err)
			}
		}
	}

	receipt := "rcpt_" + uuid.NewString()
	gatewayOrderID, err := h.Gateway.CreateOrder(int64(order.FinalAmount)*100, "INR", receipt)
	if err != nil {
		c.Logger().Errorf("checkout: gateway order: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, "order creation failed")
	}

	if err := h.DB.Model(&order).Update("gateway_order_id", gatewayOrderID).Error; err != nil {
		c.Logger().Errorf("checkout: gateway id write: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "order creation failed")
	}
	order.GatewayOrderID = gatewayOrderID

	publish(c, h.Producer, "order_events", map[string]any{
		"type":    "order_created",
		"orderID": order.ID,
		"userID":  order.UserID,
		"amount":  order.FinalAmount,
	})

	return h.orderResponse(c, &order)
}

// VerifyPayment closes the trust boundary: the gateway callback is only
// honored after its HMAC signature checks out server-side, and only then does
// the order flip PENDING to PAID.
func (h *CheckoutHandler) VerifyPayment(c echo.Context) error {
	if h.Gateway == nil {
		c.Logger().Error("checkout: payment gateway not configured")
		return echo.NewHTTPError(http.StatusInternalServerError, "payment configuration missing")
	}

	var req struct {
		OrderID         uint   `json:"order_id"`
		RazorpayOrderID string `json:"razorpay_order_id"`
		PaymentID       string `json:"payment_id"`
		Signature       string `json:"signature"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	var order models.Order
	if err := h.DB.First(&order, req.OrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "verification failed")
	}

	if order.GatewayOrderID != req.RazorpayOrderID ||
		!h.Gateway.VerifySignature(req.RazorpayOrderID, req.PaymentID, req.Signature) {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment signature")
	}

	updates := map[string]any{
		"status":     models.OrderPaid,
		"payment_id": req.PaymentID,
	}
	if err := h.DB.Model(&order).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "verification failed")
	}

	publish(c, h.Producer, "order_events", map[string]any{
		"type":      "payment_captured",
		"orderID":   order.ID,
		"paymentID": req.PaymentID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"order_id":   order.ID,
		"payment_id": req.PaymentID,
		"status":     models.OrderPaid,
	})
}
