package billing

import (
	"time"

	"github.com/google/uuid"
)

// Company holds the lab's own fiscal identity. The table holds at most one
// row, enforced by the service.
type Company struct {
	ID             uuid.UUID `db:"id" json:"id"`
	BusinessName   string    `db:"business_name" json:"business_name"`
	DocumentNumber string    `db:"document_number" json:"document_number"`
	PhoneNumber    string    `db:"phone_number" json:"phone_number"`
	Email          string    `db:"email" json:"email"`
	LegalAddress   string    `db:"legal_address" json:"legal_address"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
