package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/events"
	"github.com/ferixo/storefront/internal/models"
)

func seedCoupon(t *testing.T, db *gorm.DB, c models.Coupon) models.Coupon {
	t.Helper()
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestVerifyCoupon(t *testing.T) {
	db := InitTestDB(t)
	h := &CouponHandler{DB: db, Producer: &events.Producer{}}

	seedCoupon(t, db, models.Coupon{
		Code:            "SUMMER25",
		DiscountPercent: 25,
		MaxDiscount:     500,
		Active:          true,
		StartsAt:        time.Now().Add(-time.Hour),
		EndsAt:          time.Now().Add(time.Hour),
	})

	// Lowercase input must match the stored uppercase code.
	rec, c := doJSONRequest(t, http.MethodPost, "/api/v1/coupons/verify", map[string]string{"code": "summer25"})
	require.NoError(t, h.Verify(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Code      string  `json:"code"`
		Discount  float64 `json:"discount"`
		MaxAmount float64 `json:"max_amount"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "SUMMER25", resp.Code)
	require.Equal(t, float64(25), resp.Discount)
	require.Equal(t, float64(500), resp.MaxAmount)
}

func TestVerifyCouponUnknown(t *testing.T) {
	db := InitTestDB(t)
	h := &CouponHandler{DB: db, Producer: &events.Producer{}}

	_, c := doJSONRequest(t, http.MethodPost, "/api/v1/coupons/verify", map[string]string{"code": "NOPE"})
	err := h.Verify(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestVerifyCouponInactive(t *testing.T) {
	db := InitTestDB(t)
	h := &CouponHandler{DB: db, Producer: &events.Producer{}}

	seedCoupon(t, db, models.Coupon{
		Code:            "DISABLED",
		DiscountPercent: 10,
		Active:          false,
		StartsAt:        time.Now().Add(-time.Hour),
		EndsAt:          time.Now().Add(time.Hour),
	})

	_, c := doJSONRequest(t, http.MethodPost, "/api/v1/coupons/verify", map[string]string{"code": "DISABLED"})
	err := h.Verify(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestVerifyCouponExpired(t *testing.T) {
	db := InitTestDB(t)
	h := &CouponHandler{DB: db, Producer: &events.Producer{}}

	seedCoupon(t, db, models.Coupon{
		Code:            "BYGONE",
		DiscountPercent: 10,
		Active:          true,
		StartsAt:        time.Now().Add(-48 * time.Hour),
		EndsAt:          time.Now().Add(-24 * time.Hour),
	})

	_, c := doJSONRequest(t, http.MethodPost, "/api/v1/coupons/verify", map[string]string{"code": "BYGONE"})
	err := h.Verify(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestVerifyCouponNotYetStarted(t *testing.T) {
	db := InitTestDB(t)
	h := &CouponHandler{DB: db, Producer: &events.Producer{}}

	seedCoupon(t, db, models.Coupon{
		Code:            "SOON",
		DiscountPercent: 10,
		Active:          true,
		StartsAt:        time.Now().Add(24 * time.Hour),
		EndsAt:          time.Now().Add(48 * time.Hour),
	})

	_, c := doJSONRequest(t, http.MethodPost, "/api/v1/coupons/verify", map[string]string{"code": "SOON"})
	err := h.Verify(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestCreateCouponNormalizesCode(t *testing.T) {
	db := InitTestDB(t)
	h := &CouponHandler{DB: db, Producer: &events.Producer{}}

	payload := map[string]any{
		"code":       "welcome10",
		"discount":   10,
		"max_amount": 200,
		"starts_at":  time.Now().Add(-time.Hour),
		"ends_at":    time.Now().Add(time.Hour),
	}
	rec, c := doJSONRequest(t, http.MethodPost, "/api/v1/admin/coupons", payload)
	require.NoError(t, h.CreateCoupon(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Coupon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "WELCOME10", created.Code)
	require.True(t, created.Active)
}

func TestCreateCouponRejectsBadDiscount(t *testing.T) {
	db := InitTestDB(t)
	h := &CouponHandler{DB: db, Producer: &events.Producer{}}

	_, c := doJSONRequest(t, http.MethodPost, "/api/v1/admin/coupons", map[string]any{
		"code":     "BAD",
		"discount": 120,
	})
	err := h.CreateCoupon(c)
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestDeleteCoupon(t *testing.T) {
	db := InitTestDB(t)
	h := &CouponHandler{DB: db, Producer: &events.Producer{}}

	cp := seedCoupon(t, db, models.Coupon{
		Code:            "GONE",
		DiscountPercent: 5,
		Active:          true,
		StartsAt:        time.Now().Add(-time.Hour),
		EndsAt:          time.Now().Add(time.Hour),
	})

	rec, c := doJSONRequest(t, http.MethodDelete, "/api/v1/admin/coupons/1", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteCoupon(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	db.Model(&models.Coupon{}).Where("id = ?", cp.ID).Count(&count)
	require.Equal(t, int64(0), count)
}
