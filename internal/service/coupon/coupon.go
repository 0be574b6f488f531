package coupon

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/models"
	"github.com/ferixo/storefront/internal/pricing"
)

var (
	ErrNotFound = errors.New("coupon not found or inactive")
	ErrExpired  = errors.New("coupon expired")
)

// Verify looks up a code and checks its activity window. Codes are stored
// uppercase, so input is normalized first. Read-only.
func Verify(ctx context.Context, db *gorm.DB, code string, now time.Time) (*pricing.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrNotFound
	}

	var c models.Coupon
	if err := db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !c.Active {
		return nil, ErrNotFound
	}
	if now.Before(c.StartsAt) || now.After(c.EndsAt) {
		return nil, ErrExpired
	}

	return &pricing.Coupon{
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent,
		MaxDiscount:     c.MaxDiscount,
	}, nil
}
