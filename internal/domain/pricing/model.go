package pricing

import (
	"time"

	"github.com/google/uuid"
)

// PriceList is a named override-price table attached to referrals or coupons.
type PriceList struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// PriceListItem is one exam's override price inside a list.
type PriceListItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PriceListID uuid.UUID `db:"price_list_id" json:"price_list_id"`
	ExamID      uuid.UUID `db:"exam_id" json:"exam_id"`
	Price       float64   `db:"price" json:"price"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Coupon grants access to a price list until its expiration date.
// A nil ExpirationDate never expires.
type Coupon struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Code           string     `db:"code" json:"code"`
	PriceListID    uuid.UUID  `db:"price_list_id" json:"price_list_id"`
	ExpirationDate *time.Time `db:"expiration_date" json:"expiration_date,omitempty"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the coupon's expiration date has passed relative to
// the given day. Today itself is still valid.
func (c *Coupon) Expired(today time.Time) bool {
	return c.ExpirationDate != nil && c.ExpirationDate.Before(today)
}

// Price resolution sources, in precedence order.
const (
	SourceCoupon    = "coupon"
	SourcePriceList = "price_list"
	SourceBase      = "base"
)

// Resolution is the outcome of resolving an exam's effective price.
type Resolution struct {
	Price         float64    `json:"price"`
	Source        string     `json:"source"`
	PriceListID   *uuid.UUID `json:"price_list_id,omitempty"`
	PriceListName string     `json:"price_list_name,omitempty"`
	CouponCode    string     `json:"coupon_code,omitempty"`
}

// Coupon validation outcomes. Both are boolean-invalid to callers but carry
// distinct messages.
const (
	CouponInvalidExpired  = "expired"
	CouponInvalidNotFound = "not_found"
)

// CouponValidation is the outcome of checking a coupon code.
type CouponValidation struct {
	Valid   bool    `json:"valid"`
	Coupon  *Coupon `json:"coupon,omitempty"`
	Reason  string  `json:"reason,omitempty"`
	Message string  `json:"message,omitempty"`
}
