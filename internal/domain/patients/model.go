package patients

import (
	"time"

	"github.com/google/uuid"
)

// Document types accepted for patient identification.
const (
	DocumentDNI      = "DNI"
	DocumentCE       = "CE"
	DocumentPassport = "PASSPORT"
)

const (
	SexMale   = "MALE"
	SexFemale = "FEMALE"
)

// LeadSource is the channel through which a patient first reached the lab.
type LeadSource struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Patient maps to the patient table.
type Patient struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	DocumentType   string     `db:"document_type" json:"document_type"`
	DocumentNumber string     `db:"document_number" json:"document_number"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Birthdate      time.Time  `db:"birthdate" json:"birthdate"`
	Sex            string     `db:"sex" json:"sex"`
	PhoneNumber    string     `db:"phone_number" json:"phone_number"`
	Email          *string    `db:"email" json:"email,omitempty"`
	LeadSourceID   *uuid.UUID `db:"lead_source_id" json:"lead_source_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns "Last, First" for display and search results.
func (p *Patient) FullName() string {
	return p.LastName + ", " + p.FirstName
}
