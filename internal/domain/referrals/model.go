package referrals

import (
	"time"

	"github.com/google/uuid"
)

// Referral is a business entity (clinic, company, insurer) that sends
// patients to the lab, optionally carrying its own price list.
type Referral struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	BusinessName   string     `db:"business_name" json:"business_name"`
	DocumentNumber string     `db:"document_number" json:"document_number"`
	PhoneNumber    string     `db:"phone_number" json:"phone_number"`
	Email          string     `db:"email" json:"email"`
	Address        string     `db:"address" json:"address"`
	PriceListID    *uuid.UUID `db:"price_list_id" json:"price_list_id,omitempty"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
