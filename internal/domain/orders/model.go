package orders

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Orders are created PENDING and move exactly once to PAID
// or VOIDED.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusVoided  = "voided"
)

// Payment methods, captured at payment time.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentYape     = "yape"
	PaymentPlin     = "plin"
)

// Order is a patient's exam request. Code follows YYYYMMDD-NNNNNN with the
// sequence restarting each day.
type Order struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Code          string     `db:"code" json:"code"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	ReferralID    *uuid.UUID `db:"referral_id" json:"referral_id,omitempty"`
	CouponID      *uuid.UUID `db:"coupon_id" json:"coupon_id,omitempty"`
	Status        string     `db:"status" json:"status"`
	PaymentMethod *string    `db:"payment_method" json:"payment_method,omitempty"`
	Observations  string     `db:"observations" json:"observations"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// OrderDetail is one priced exam line. The price is a snapshot taken at
// creation and never recomputed.
type OrderDetail struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	ExamID    uuid.UUID `db:"exam_id" json:"exam_id"`
	Price     float64   `db:"price" json:"price"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Total sums the order's line prices.
func Total(details []*OrderDetail) float64 {
	var t float64
	for _, d := range details {
		t += d.Price
	}
	return t
}
