package models

import (
	"encoding/json"
	"time"
)

const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// Order statuses. PENDING flips to PAID only after the gateway
// signature has been verified server-side.
const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderRefunded  = "REFUNDED"
	OrderCancelled = "CANCELLED"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	Email        string    `gorm:"unique;not null"           json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         string    `gorm:"not null;default:CUSTOMER" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Address struct {
	ID      uint   `gorm:"primaryKey"       json:"id"`
	UserID  uint   `gorm:"index;not null"   json:"user_id"`
	Type    string `gorm:"default:SHIPPING" json:"type"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `gorm:"default:India"    json:"country"`
}

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"name"`
	Series      string  `gorm:"index"                    json:"series"`
	Description string  `json:"description"`
	BasePrice   float64 `gorm:"not null"                 json:"base_price"`
	Stock       uint    `json:"stock"`
	Capacity    string  `json:"capacity"`

	Images   []ProductImage   `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Features []ProductFeature `gorm:"constraint:OnDelete:CASCADE" json:"features,omitempty"`
	Variants []ProductVariant `gorm:"constraint:OnDelete:CASCADE" json:"variants,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type ProductImage struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	URL       string `gorm:"not null"       json:"url"`
}

type ProductFeature struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	Text      string `gorm:"not null"       json:"text"`
}

type ProductVariant struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	Name      string `gorm:"not null"       json:"name"`
	Capacity  string `json:"capacity"`
	Stock     uint   `json:"stock"`
}

type Review struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	ProductID uint      `gorm:"index;not null" json:"product_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Rating    int       `gorm:"not null"       json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Coupon codes are stored uppercase; lookups normalize before matching.
type Coupon struct {
	ID              uint      `gorm:"primaryKey"      json:"id"`
	Code            string    `gorm:"unique;not null" json:"code"`
	DiscountPercent float64   `gorm:"not null"        json:"discount"`
	MaxDiscount     float64   `json:"max_amount"`
	Active          bool      `gorm:"default:true"    json:"is_active"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// Order keeps the cart and shipping address as an embedded JSON snapshot so
// the record survives later catalog or address edits. IdempotencyKey ties one
// checkout attempt to at most one row.
type Order struct {
	ID             uint            `gorm:"primaryKey"               json:"id"`
	UserID         uint            `gorm:"index;not null"           json:"user_id"`
	User           *User           `json:"user,omitempty"`
	IdempotencyKey string          `gorm:"uniqueIndex;not null"     json:"idempotency_key"`
	Items          json.RawMessage `gorm:"type:jsonb"               json:"items"`
	Subtotal       float64         `json:"subtotal"`
	TaxAmount      float64         `json:"tax_amount"`
	ShippingAmount float64         `json:"shipping_amount"`
	DiscountAmount float64         `json:"discount_amount"`
	FinalAmount    float64         `json:"final_amount"`
	Status         string          `gorm:"not null;default:PENDING" json:"status"`
	GatewayOrderID string          `gorm:"index"                    json:"gateway_order_id"`
	PaymentID      string          `json:"payment_id"`
	CreatedAt      time.Time       `json:"created_at"`
}
